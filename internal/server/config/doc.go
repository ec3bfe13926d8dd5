// Package config handles configuration for the development stub server,
// including defaults, JSON overlay, and command-line flags.
//
// Supported flags
//
//	-a string   listen address
//	-s string   HMAC secret for access tokens
//	-t int      access token validity (minutes)
//	-l string   log level
package config
