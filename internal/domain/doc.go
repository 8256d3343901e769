// Package domain contains the core business entities of the notes service:
// the Note record, the partial-update NotePatch and the validation errors
// shared by every layer. It has no dependencies on storage or transport.
package domain
