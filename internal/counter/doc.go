// Package counter reads cumulative kernel statistics from /proc.
//
// A Source opens its pseudo-file once and re-reads it on every Sample call:
// the descriptor is rewound to offset zero and any buffered read-ahead is
// discarded, because the kernel regenerates the content on each read. Two
// sources exist, VMStat (pgpgin/pgpgout from /proc/vmstat) and NetDev (packet
// totals from /proc/net/dev with excluded interfaces left out).
package counter
