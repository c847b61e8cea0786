package config

import (
	"encoding/base64"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionTenant = "72f988bf-86f1-41af-91ab-2d7cd011db47"

func TestDecodeSessionConfig_QueryParameters(t *testing.T) {
	q := url.Values{
		"organization":   {"contoso"},
		"authentication": {"azcli"},
		"domains":        {"core", "builds"},
		"tenant":         {sessionTenant},
	}

	sc, err := DecodeSessionConfig(q)
	require.NoError(t, err)
	assert.Equal(t, SessionConfig{
		Organization:   "contoso",
		Authentication: "azcli",
		Domains:        []string{"core", "builds"},
		Tenant:         sessionTenant,
	}, sc)
}

func TestDecodeSessionConfig_Base64JSON(t *testing.T) {
	doc := `{"organization":"contoso","authentication":"pat","pat":"secret","domains":["wiki"]}`
	q := url.Values{
		"config":       {base64.StdEncoding.EncodeToString([]byte(doc))},
		"organization": {"fabrikam"},
	}

	sc, err := DecodeSessionConfig(q)
	require.NoError(t, err)
	assert.Equal(t, "fabrikam", sc.Organization, "query parameters override the document")
	assert.Equal(t, "pat", sc.Authentication)
	assert.Equal(t, "secret", sc.PAT)
	assert.Equal(t, []string{"wiki"}, sc.Domains)
}

func TestDecodeSessionConfig_BadConfig(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "not base64", value: "%%%"},
		{name: "not json", value: base64.StdEncoding.EncodeToString([]byte("nope"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSessionConfig(url.Values{"config": {tt.value}})
			var cfgErr ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, SourceSession, cfgErr.Source)
			assert.Equal(t, ErrorTypeParse, cfgErr.ErrorType)
		})
	}
}

func TestSessionConfig_Normalize(t *testing.T) {
	sc := SessionConfig{Organization: " contoso ", Authentication: " AzCLI "}
	sc.Normalize(false)
	assert.Equal(t, "contoso", sc.Organization)
	assert.Equal(t, "azcli", sc.Authentication)
	assert.Equal(t, []string{"all"}, sc.Domains)

	sc = SessionConfig{Organization: "contoso", Authentication: "interactive", Domains: []string{"core"}}
	sc.Normalize(true)
	assert.Equal(t, "pat", sc.Authentication)
	assert.Equal(t, []string{"core"}, sc.Domains)
}

func TestSessionConfig_Validate(t *testing.T) {
	tests := []struct {
		name       string
		config     SessionConfig
		wantFields []string
	}{
		{
			name:   "valid interactive",
			config: SessionConfig{Organization: "contoso", Authentication: "interactive"},
		},
		{
			name:   "valid pat with tenant",
			config: SessionConfig{Organization: "contoso", Authentication: "pat", PAT: "x", Tenant: sessionTenant},
		},
		{
			name:       "missing organization and authentication",
			config:     SessionConfig{},
			wantFields: []string{"organization", "authentication"},
		},
		{
			name:       "unknown authentication",
			config:     SessionConfig{Organization: "contoso", Authentication: "kerberos"},
			wantFields: []string{"authentication"},
		},
		{
			name:       "pat without token",
			config:     SessionConfig{Organization: "contoso", Authentication: "pat"},
			wantFields: []string{"pat"},
		},
		{
			name:       "malformed tenant",
			config:     SessionConfig{Organization: "contoso", Authentication: "env", Tenant: "not-a-guid"},
			wantFields: []string{"tenant"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var errs ConfigurationErrorCollection
			require.True(t, errors.As(err, &errs))
			var fields []string
			for _, e := range errs.Errors {
				assert.Equal(t, SourceSession, e.Source)
				fields = append(fields, e.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}
