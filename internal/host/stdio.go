package host

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/server"

	"azdo-mcp/internal/compose"
	"azdo-mcp/pkg/logging"
)

// ServeStdio serves comp over in/out until the input closes or ctx is
// cancelled. Diagnostics go through pkg/logging, never to out.
func ServeStdio(ctx context.Context, comp *compose.Composition, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(comp.Server)
	stdio.SetErrorLogger(logging.StdLogger("Stdio", logging.LevelError))

	logging.Info("Host", "Serving organization %s over stdio", comp.Config.Organization)
	err := stdio.Listen(ctx, in, out)
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return fmt.Errorf("stdio transport: %w", err)
}
