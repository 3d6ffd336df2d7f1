// Package encfile provides the encrypted secrets directory.
//
// Every artifact is one file, <service>_<kind>.enc, holding the ciphertext of
// a full payload. Writes replace the whole file atomically; nothing in this
// package ever writes plaintext into the secrets directory.
//
//   - Store: SecretStore over the secrets directory
//   - Materializer: decrypts an artifact into a private temporary file for the
//     duration of one call and removes it on every exit path
//
// # Concurrency
//
// There is no file locking. Two processes refreshing the same token race and
// the last rename wins; each file is always a complete ciphertext.
//
// # Data Location
//
// By default, secrets are stored in ~/.redoffice/secrets
package encfile
