// Package gemini implements the enrichment provider on Google's Gemini API.
//
// Both enrichment fields are produced by asking the model for a small JSON
// document: a summary for Summarize and a sentiment label with a score for
// ClassifySentiment. Calls are retried with exponential backoff and jitter
// on transient failures. Answers blocked by safety filters or that do not
// match the expected JSON are permanent failures and are not retried.
//
// The genai client is reached through the ContentGenerator interface so
// tests can substitute a fake.
package gemini
