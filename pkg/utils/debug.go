//go:build debug
// +build debug

package utils

// DefaultLogLevel is the level used when none is configured. Debug builds log everything.
const DefaultLogLevel = "debug"
