// Package git syncs the optional content repository: clone into the workspace
// on first use, fast-forward pull afterwards.
package git
