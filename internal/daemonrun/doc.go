// Package daemonrun runs the indicator as a single-instance process: it
// sets up logging for the run, takes the instance lock, opens the indicator
// session, reports readiness to a detaching parent, and polls until a
// signal or device removal stops it.
package daemonrun
