// Package memory provides in-memory implementations of the driven store ports.
// They back the --ephemeral mode and are used throughout the tests.
package memory
