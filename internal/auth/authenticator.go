package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"azdo-mcp/pkg/logging"
)

const (
	// Scope is the Azure DevOps resource scope requested for bearer tokens.
	Scope = "499b84ac-1321-427f-aa17-267ca6975798/.default"

	// ClientID is the public client used for interactive sign-in.
	ClientID = "0d50963b-7bb9-4fe7-94c7-a99af00b5136"

	// PATEnvVar is read at call time when no PAT was configured explicitly.
	PATEnvVar = "AZURE_DEVOPS_PAT"
)

// ErrNoPAT is wrapped into the AuthenticationError returned when the pat
// strategy has no token to present.
var ErrNoPAT = errors.New("no personal access token configured (set " + PATEnvVar + " or pass one in the session configuration)")

// TokenProvider returns a current token on every call. Tokens may be cached
// internally.
type TokenProvider func(ctx context.Context) (string, error)

// AuthenticationError reports that a token could not be acquired.
type AuthenticationError struct {
	Strategy Strategy
	Err      error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication (%s) failed: %v", e.Strategy, e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// CredentialFactory builds the Azure credential for a token strategy.
type CredentialFactory func(strategy Strategy, tenantID string) (azcore.TokenCredential, error)

type options struct {
	pat           string
	newCredential CredentialFactory
}

// Option customizes New.
type Option func(*options)

// WithPAT sets the personal access token used by the pat strategy.
func WithPAT(pat string) Option {
	return func(o *options) { o.pat = pat }
}

// WithCredentialFactory replaces the azidentity-backed credential factory.
func WithCredentialFactory(f CredentialFactory) Option {
	return func(o *options) { o.newCredential = f }
}

// New returns a TokenProvider for strategy. It never fails and performs no
// I/O: credentials are created on the first token request and every failure
// surfaces from that call as *AuthenticationError. tenantID is only
// consulted by the interactive and azcli strategies.
func New(strategy Strategy, tenantID string, opts ...Option) TokenProvider {
	o := options{newCredential: DefaultCredential}
	for _, opt := range opts {
		opt(&o)
	}

	switch strategy {
	case PAT:
		return patProvider(o.pat)
	case Interactive, AzCLI:
		return newCredentialSource(strategy, tenantID, o.newCredential).Token
	case Env:
		return newCredentialSource(strategy, "", o.newCredential).Token
	default:
		return func(context.Context) (string, error) {
			return "", &AuthenticationError{Strategy: strategy, Err: fmt.Errorf("unsupported authentication type %q", strategy)}
		}
	}
}

func patProvider(pat string) TokenProvider {
	return func(context.Context) (string, error) {
		if pat != "" {
			return pat, nil
		}
		if env := os.Getenv(PATEnvVar); env != "" {
			return env, nil
		}
		return "", &AuthenticationError{Strategy: PAT, Err: ErrNoPAT}
	}
}

// DefaultCredential maps a strategy to its azidentity credential.
func DefaultCredential(strategy Strategy, tenantID string) (azcore.TokenCredential, error) {
	switch strategy {
	case Interactive:
		return azidentity.NewInteractiveBrowserCredential(&azidentity.InteractiveBrowserCredentialOptions{
			ClientID: ClientID,
			TenantID: tenantID,
		})
	case AzCLI:
		return azidentity.NewAzureCLICredential(&azidentity.AzureCLICredentialOptions{
			TenantID: tenantID,
		})
	case Env:
		return azidentity.NewEnvironmentCredential(nil)
	default:
		return nil, fmt.Errorf("authentication type %q does not use an Azure credential", strategy)
	}
}

// credentialSource lazily creates an Azure credential and caches the last
// token until it expires.
type credentialSource struct {
	strategy      Strategy
	tenantID      string
	newCredential CredentialFactory

	mu         sync.Mutex
	credential azcore.TokenCredential
	token      *oauth2.Token

	// coalesces concurrent refreshes into one credential call
	group singleflight.Group
}

func newCredentialSource(strategy Strategy, tenantID string, factory CredentialFactory) *credentialSource {
	return &credentialSource{
		strategy:      strategy,
		tenantID:      tenantID,
		newCredential: factory,
	}
}

func (c *credentialSource) cached() *oauth2.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Token implements TokenProvider.
func (c *credentialSource) Token(ctx context.Context) (string, error) {
	if tok := c.cached(); tok.Valid() {
		return tok.AccessToken, nil
	}

	v, err, _ := c.group.Do("token", func() (interface{}, error) {
		if tok := c.cached(); tok.Valid() {
			return tok, nil
		}
		return c.fetch(ctx)
	})
	if err != nil {
		return "", &AuthenticationError{Strategy: c.strategy, Err: err}
	}
	return v.(*oauth2.Token).AccessToken, nil
}

func (c *credentialSource) fetch(ctx context.Context) (*oauth2.Token, error) {
	cred, err := c.getCredential()
	if err != nil {
		return nil, err
	}

	logging.Debug("Auth", "Requesting token using %s credential", c.strategy)
	at, err := cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes:   []string{Scope},
		TenantID: c.tenantID,
	})
	if err != nil {
		return nil, err
	}
	if at.Token == "" {
		return nil, errors.New("credential returned an empty token")
	}

	tok := &oauth2.Token{
		AccessToken: at.Token,
		TokenType:   "Bearer",
		Expiry:      at.ExpiresOn,
	}

	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
	return tok, nil
}

func (c *credentialSource) getCredential() (azcore.TokenCredential, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.credential != nil {
		return c.credential, nil
	}
	cred, err := c.newCredential(c.strategy, c.tenantID)
	if err != nil {
		return nil, fmt.Errorf("creating %s credential: %w", c.strategy, err)
	}
	c.credential = cred
	return cred, nil
}
