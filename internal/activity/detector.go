// Package activity decides whether counters moved between two polls.
package activity

import "actled/internal/counter"

// Detector remembers the previous sample and reports changes against it.
// The zero value is ready to use; its first Update only records a baseline.
type Detector struct {
	prev   counter.Sample
	primed bool
}

// Update reports whether any counter in s differs from the previous sample,
// in either direction, and then stores s as the new baseline. The first call
// returns false.
func (d *Detector) Update(s counter.Sample) bool {
	changed := d.primed && !d.prev.Equal(s)
	d.prev = append(d.prev[:0], s...)
	d.primed = true
	return changed
}

// Primed reports whether a baseline sample has been recorded.
func (d *Detector) Primed() bool {
	return d.primed
}
