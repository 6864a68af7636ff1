// Package eventstore persists build lifecycle events in SQLite and projects
// them into a build history.
package eventstore
