// Package persistence stores the tracked repository paths and display preferences.
//
// The on-disk document is indented JSON. Codec also accepts the legacy layout,
// a bare JSON array of paths, and upgrades it to the current shape.
package persistence
