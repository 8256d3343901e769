// Package task runs background work outside the request path.
//
// Tasks are persisted through a TaskStore before they are queued, executed
// by a fixed-size WorkerPool and marked completed or failed when they
// finish. On start the TaskRunner recovers pending and interrupted tasks
// using the Factory registered for their type. The only task type today is
// note enrichment, which computes a note's summary and sentiment.
package task
