// Package models defines the domain types for Ansuz.
package models

import "time"

// Note represents one on-disk note tracked by the notebook.
type Note struct {
	// Path is the absolute location of the note file, unique within the
	// notebook.
	Path string
	// Title is the extension-stripped filename, the note's user-facing
	// identity.
	Title string
	// Ext is the note's file extension, including the leading dot.
	Ext string
	// Snippet is the first line of content, sanitised for list display.
	Snippet string
	// Checksum is the content digest from the last scan or reconcile.
	Checksum string
	ModTime  time.Time
	// Seq is the scan/insert order, used for deterministic tie-breaks.
	Seq int
	// Pending marks a registered create whose file has not been written yet.
	Pending bool
}

// NoteMeta is a lightweight listing entry returned by the storage provider.
type NoteMeta struct {
	Path    string // relative to the notes root
	ModTime time.Time
}
