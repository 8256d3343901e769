// Package sqlstore implements the note and task stores on database/sql.
//
// The same stores run against PostgreSQL (through pgx) and SQLite (through
// a pure Go driver). The engine is chosen from the database URL, queries are
// written with ? placeholders and rebound for PostgreSQL, and the schema for
// each engine is embedded and applied with goose.
package sqlstore
