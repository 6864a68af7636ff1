// Package workspace manages the directory a content repository is cloned into.
// Persistent workspaces survive between builds so later syncs only pull;
// ephemeral ones are timestamped and removed after a one-off build.
package workspace
