// Package led drives the activity indicator.
//
// A Driver performs the physical write for one kind of output: the sysfs
// brightness attribute of an LED class device, or a sysfs GPIO pin. Output
// wraps a driver and only forwards level changes, so repeated requests for
// the same level cost no syscalls. Trigger handles the LED class "trigger"
// attribute, which must be set to "none" before manual brightness writes
// stick and restored when the daemon exits.
package led
