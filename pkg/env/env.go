// Package env reads process environment values with fallbacks. Structured
// configuration goes through pkg/config; this exists for the few spots that
// need a value before config is loaded, such as logger bootstrap.
package env

import (
	"os"
	"strings"
)

// Get returns the trimmed value of key, or fallback when the variable is
// unset or blank.
func Get(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	if val = strings.TrimSpace(val); val == "" {
		return fallback
	}
	return val
}
