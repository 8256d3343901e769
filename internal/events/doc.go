// Package events decouples the code that changes notes from the code that
// schedules background work for them.
//
// The note service emits an Event after a write has committed. Handlers
// registered on an Emitter turn the event into whatever follow-up work is
// needed; today that is a single enrichment task per created note.
package events
