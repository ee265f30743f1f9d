package codec

import "strings"

// symbolMarkers are the name tokens that mark a field as a symbol
// reference. The portable format carries no schema, so classification is
// by field name alone.
var symbolMarkers = map[string]bool{
	"VAR":      true,
	"VARIABLE": true,
	"SYMBOL":   true,
}

// IsSymbolField reports whether a field name denotes a symbol reference:
// the name, or one of its "_"-separated tokens, is a marker token
// (case-insensitive). "VAR", "LIST_VAR" and "symbol" match; "VARIANCE"
// and "AVATAR" do not.
func IsSymbolField(name string) bool {
	for _, tok := range strings.Split(strings.ToUpper(name), "_") {
		if symbolMarkers[tok] {
			return true
		}
	}
	return false
}
