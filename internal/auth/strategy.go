package auth

import (
	"fmt"
	"strings"
)

// Strategy selects how bearer tokens for Azure DevOps are obtained.
type Strategy string

const (
	// Interactive signs the user in through the system browser.
	Interactive Strategy = "interactive"
	// AzCLI reuses the session of a logged-in Azure CLI.
	AzCLI Strategy = "azcli"
	// Env uses a service principal described by AZURE_* environment variables.
	Env Strategy = "env"
	// PAT presents a personal access token.
	PAT Strategy = "pat"
)

// Strategies returns every supported strategy.
func Strategies() []Strategy {
	return []Strategy{Interactive, AzCLI, Env, PAT}
}

// ParseStrategy converts a configuration value into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	candidate := Strategy(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Strategies() {
		if candidate == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("unsupported authentication type %q (supported: interactive, azcli, env, pat)", s)
}

// UsesTenant reports whether the strategy consumes a tenant id. Only these
// strategies trigger an organization tenant lookup at startup.
func (s Strategy) UsesTenant() bool {
	return s == Interactive || s == AzCLI
}

func (s Strategy) String() string {
	return string(s)
}
