// Package platform builds authenticated Azure DevOps SDK connections.
package platform

import (
	"context"
	"strings"
	"time"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7"

	"azdo-mcp/internal/auth"
)

// BaseURL is the Azure DevOps Services host.
const BaseURL = "https://dev.azure.com"

// requestTimeout bounds a single SDK request.
const requestTimeout = 60 * time.Second

// ClientFactory returns a connection ready for one outgoing API call.
type ClientFactory func(ctx context.Context) (*azuredevops.Connection, error)

// OrganizationURL returns the service URL of an organization.
func OrganizationURL(org string) string {
	return BaseURL + "/" + strings.TrimSpace(org)
}

// NewClientFactory captures the organization URL, the token provider and the
// user-agent accessor. Every invocation fetches a token and reads the user
// agent again, so calls made after the MCP handshake carry the client
// descriptor.
func NewClientFactory(orgURL string, strategy auth.Strategy, tokens auth.TokenProvider, userAgent func() string) ClientFactory {
	return func(ctx context.Context) (*azuredevops.Connection, error) {
		token, err := tokens(ctx)
		if err != nil {
			return nil, err
		}

		conn := azuredevops.NewAnonymousConnection(orgURL)
		conn.AuthorizationString = AuthorizationHeader(strategy, token)
		conn.UserAgent = userAgent()
		timeout := requestTimeout
		conn.Timeout = &timeout
		return conn, nil
	}
}

// AuthorizationHeader renders the Authorization header for a token. PATs use
// basic authentication with an empty user name; everything else is a bearer
// token.
func AuthorizationHeader(strategy auth.Strategy, token string) string {
	if strategy == auth.PAT {
		return azuredevops.CreateBasicAuthHeaderValue("", token)
	}
	return "Bearer " + token
}
