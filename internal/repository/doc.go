// Package repository defines the tracked Mercurial repository record and its cached state.
package repository
