// Package common contains shared constants and sentinel errors used across
// clouddrive components.
package common

const (
	// AuthorizationHeaderName carries the bearer credential on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the authorization scheme prefix.
	BearerScheme = "Bearer"

	// RequestIDHeaderName tags every outbound request for log correlation.
	RequestIDHeaderName = "X-Request-ID"

	// CredentialKey is the single storage key holding the session credential.
	CredentialKey = "token"
)
