// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - SecretCodec: authenticated symmetric encryption of a byte blob
//   - SecretStore: encrypted artifacts in the secrets directory
//   - Materializer: scoped plaintext materialization with guaranteed cleanup
//   - OAuthProvider: client-secret parsing, token refresh
//   - Authorizer: interactive authorization-code flow
//   - SessionBuilder: builds API clients from a valid token
//   - ConfigStore: application configuration
//   - Logger: injected logging
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
