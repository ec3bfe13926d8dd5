// Package stubserver is an in-process implementation of the cloud drive
// service contract, used by integration tests and by cmd/stubserver for
// manual runs of the client.
//
// It keeps users and files in memory, hashes passwords with bcrypt and issues
// HS256 JWT access tokens whose subject is the user's email. Error bodies use
// the {"detail": "..."} shape the real service returns.
package stubserver
