// Package auth guards the operator HTTP endpoints with API keys.
//
// Keys are stored as SHA-256 hashes. A key is accepted from the configured
// header (X-API-Key by default) or as a bearer token in the Authorization
// header.
package auth
