// Package service contains the application use cases for notes. It
// orchestrates the store (defined in internal/store) and the event emitter
// (internal/events) so that the API layer never talks to either directly.
//
// Services receive their dependencies through constructor injection and
// depend only on interfaces, never on a specific database or transport.
// Store errors are translated into the sentinels of this package, which the
// API layer maps to HTTP status codes.
package service
