package useragent

import (
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
)

// Product is the product token sent to Azure DevOps.
const Product = "AzureDevOps.MCP"

// Composer owns the User-Agent string of one composition. It starts as
// "<product>/<version>" and gains the MCP client descriptor once the peer has
// completed the initialize handshake.
type Composer struct {
	mu       sync.RWMutex
	value    string
	appended bool
}

// New creates a composer for the given server version.
func New(version string) *Composer {
	return &Composer{value: fmt.Sprintf("%s/%s", Product, version)}
}

// UserAgent returns the current value. Read it per request; it changes after
// the handshake.
func (c *Composer) UserAgent() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// AppendClientInfo appends " <name>/<version>" describing the MCP client.
// Only the first call carrying both a name and a version has an effect.
func (c *Composer) AppendClientInfo(info *mcp.Implementation) {
	if info == nil || info.Name == "" || info.Version == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.appended {
		return
	}
	c.value = fmt.Sprintf("%s %s/%s", c.value, info.Name, info.Version)
	c.appended = true
}
