// Package api handles incoming HTTP requests for notes, request decoding
// and response formatting. It acts as an adapter between HTTP clients and
// the note service, translating HTTP concerns to service calls and service
// errors back to status codes.
package api
