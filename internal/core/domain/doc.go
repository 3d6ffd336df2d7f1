// Package domain defines the core entities for redoffice.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SymmetricKey / EncryptedBlob: the at-rest encryption vocabulary
//   - ClientCredential: an OAuth client description (client-secret JSON)
//   - Token: an OAuth token in Google's authorized-user format
//   - ScopeSet: the scopes a service integration requires
//   - ErrorReport: the structured error handed to the CLI layer
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
