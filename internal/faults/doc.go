// Package faults classifies actled failures.
//
// Components wrap errors with one of the marker sentinels so the CLI can tell
// configuration mistakes apart from missing hardware or unexpected /proc
// contents without string matching.
package faults
