// Package errors provides the classified error primitives used across blogbuilder.
//
// A ClassifiedError carries a category (config, content, render, ...), a
// severity and a retry strategy next to the message and cause, so callers at
// the edges (CLI, HTTP, daemon) can decide how to present or react to a
// failure without string matching.
//
// Example usage:
//
//	err := errors.ContentError("parse posts csv").
//		WithCause(readErr).
//		WithContext("path", csvPath).
//		Build()
package errors
