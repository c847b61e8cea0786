package platform

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"azdo-mcp/internal/auth"
)

func TestOrganizationURL(t *testing.T) {
	assert.Equal(t, "https://dev.azure.com/acme", OrganizationURL("acme"))
	assert.Equal(t, "https://dev.azure.com/acme", OrganizationURL(" acme "))
}

func TestAuthorizationHeader(t *testing.T) {
	assert.Equal(t, "Bearer abc", AuthorizationHeader(auth.AzCLI, "abc"))

	basic := AuthorizationHeader(auth.PAT, "pat-value")
	assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte(":pat-value")), basic)
}

func TestClientFactory_ReadsTokenAndUserAgentPerCall(t *testing.T) {
	tokens := []string{"t1", "t2"}
	calls := 0
	provider := func(context.Context) (string, error) {
		tok := tokens[calls]
		calls++
		return tok, nil
	}
	ua := "AzureDevOps.MCP/dev"

	factory := NewClientFactory("https://dev.azure.com/acme", auth.Interactive, provider, func() string { return ua })

	conn, err := factory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer t1", conn.AuthorizationString)
	assert.Equal(t, "AzureDevOps.MCP/dev", conn.UserAgent)
	assert.Equal(t, "https://dev.azure.com/acme", conn.BaseUrl)
	require.NotNil(t, conn.Timeout)

	ua = "AzureDevOps.MCP/dev vscode/1.99"
	conn, err = factory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer t2", conn.AuthorizationString)
	assert.Equal(t, "AzureDevOps.MCP/dev vscode/1.99", conn.UserAgent)
}

func TestClientFactory_PropagatesAuthenticationError(t *testing.T) {
	authErr := &auth.AuthenticationError{Strategy: auth.Env, Err: errors.New("no env")}
	factory := NewClientFactory("https://dev.azure.com/acme", auth.Env,
		func(context.Context) (string, error) { return "", authErr },
		func() string { return "ua" })

	_, err := factory(context.Background())
	var got *auth.AuthenticationError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, auth.Env, got.Strategy)
}
