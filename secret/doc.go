// Package secret resolves credential values found in configuration.
//
// A value is either a literal, a string with ${VAR} references, or a full
// reference of the form
//
//	secretref:<provider>:<ref>
//
// Built-in providers read the process environment ("env") and files
// ("file"), so a deployment can keep the JWT signing key out of the YAML:
//
//	auth:
//	  jwtSecret: secretref:file:/run/secrets/tornado-jwt
//
// Resolved values are never logged.
package secret
