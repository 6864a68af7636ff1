// Package daemon serves the exported site and keeps it up to date.
//
// Two long-running modes share the same HTTP server:
//
//   - Preview watches the post source, about file, layouts and static
//     directory and rebuilds after a short quiet period, pushing a reload
//     to connected browsers over server-sent events.
//   - Daemon rebuilds on a schedule, syncing the content repository first
//     when one is configured, recording build history and publishing
//     build notifications.
package daemon
