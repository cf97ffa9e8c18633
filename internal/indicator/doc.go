// Package indicator runs the activity indicator: it samples a counter
// source on a fixed interval, detects change between samples, and drives an
// LED output on or off.
//
// A Session moves through Initializing, Running, Draining and Stopped. Every
// resource acquired while initializing is registered with a Lifecycle so the
// output is left off and the LED trigger restored on every exit path.
package indicator
