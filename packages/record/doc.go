// Package record captures request/response transcripts as they pass through
// a client transport. A Recorder wraps any fetch.Doer and appends one
// Exchange per completed round trip to a Store; transcripts can live in
// memory or in a SQLite database and can be exported as JSON.
package record
