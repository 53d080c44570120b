// Package view draws the command palette in a terminal.
//
// A View renders a prompt line with the current filter and, below it, the
// visible commands with their matched characters highlighted. Key events
// edit the filter and move the selection. Large palettes are ranked in the
// background; the result is delivered back to the event loop as a
// tcell interrupt event.
//
// Print writes a ranked list to a plain writer for scripted use, with ANSI
// highlighting when the writer is a terminal.
package view
