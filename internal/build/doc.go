// Package build runs the staged site build: prepare the output, sync and load
// posts, render pages, copy static files, write the manifest and verify links.
//
// Every stage is timed and classified (fatal, warning or canceled). The
// resulting BuildReport is persisted in the state directory, recorded through
// metrics, appended to the event store and published to the notifier.
package build
