// Package host attaches composed servers to transports.
//
// ServeStdio runs one composition over stdin/stdout. NewStatelessHandler
// serves one shared composition over streamable HTTP without sessions.
// SessionFactory composes a fresh server for every HTTP session and routes
// later requests to it by the Mcp-Session-Id header.
package host
