// Package secret resolves credentials referenced from configuration.
//
// Configuration values may embed environment variables (${VAR}, see
// ExpandEnvStrict) and secret references of the form
//
//	secretref:<provider>:<ref>
//
// either as the whole value or inline, e.g. in a Redis URL:
//
//	redis://:secretref:file:/run/secrets/redis-password@cache:6379/0
//
// Two providers are built in: "env" reads an environment variable and
// "file" reads a mounted secret file.
package secret
