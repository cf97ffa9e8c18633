// Package preflight checks that the configured statistics file, output
// device and state directory are usable before the daemon starts.
//
// The CLI "actled check" command runs every check and fails when one does;
// "actled status" shows the same results next to the instance state.
package preflight
