// Package state persists what the previous build produced so later builds
// can skip unchanged posts.
package state
