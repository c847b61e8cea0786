// Package app provides application bootstrap and lifecycle management for azdo-mcp.
//
// # Architecture Overview
//
// The app package is the bridge between the command line and the composition
// core. It has three parts:
//
//  1. **Configuration (`config.go`)**: runtime settings collected from flags
//  2. **Bootstrap (`bootstrap.go`)**: logging setup, .env and config.yaml
//     loading, environment overrides and the tenant resolver
//  3. **Modes (`modes.go`)**: one runner per hosting topology
//
// # Execution Modes
//
//   - ModeStdio serves a single composition over stdin/stdout. The
//     organization, authentication, domains and tenant come from flags, then
//     from the defaults section of config.yaml.
//   - ModeStateless serves a single composition over streamable HTTP. Its
//     configuration is read from AZURE_DEVOPS_* environment variables.
//   - ModeStateful composes a new server for every HTTP session from the
//     session configuration supplied by the client.
//
// All modes log to stderr so the stdio protocol stream stays clean, and all
// of them stop on SIGINT or SIGTERM.
//
// # Example
//
//	cfg := app.NewConfig(app.ModeStdio, false, "", version)
//	cfg.Organization = "contoso"
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
package app
