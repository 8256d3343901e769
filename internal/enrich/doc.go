// Package enrich derives a short summary and a sentiment score from note
// content.
//
// The model-backed functions behind it are slow and fail independently, so
// Pipeline never returns an error: a field that could not be computed in
// time is simply left nil and the note stays valid without it.
package enrich
