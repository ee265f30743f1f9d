// Package blockclip holds module-wide constants.
package blockclip

// Version is the blockclip release version.
const Version = "0.1.0"
