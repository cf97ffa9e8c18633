// Command actled blinks an LED or GPIO pin while the system performs disk or
// network I/O.
//
// "actled run" polls in the foreground or, with --detach, in a background
// session. "actled status", "actled stop" and "actled check" inspect and
// control an instance; "actled config" writes or prints the configuration.
package main
