// Package daemonctl controls actled processes from the command line: it
// launches detached runs and waits for their readiness report, probes the
// instance lock, and stops a running instance.
package daemonctl
