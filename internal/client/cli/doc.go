// Package cli provides the interactive cloud drive command-line client.
//
// It wires configuration, the local credential database, the request
// pipeline, the navigation router and the application services, then runs a
// REPL. Views are router paths: commands that need a session enter the
// protected dashboard first and are refused when the guard redirects.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
