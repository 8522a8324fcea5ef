// Package conflate provides a bounded latest-value-wins frame buffer.
package conflate

// Option applies a configuration option to the LatestQueue.
type Option func(*LatestQueue)

// WithSlots sets the number of buffer slots. One slot keeps only the
// latest pending frame.
func WithSlots(slots int) Option {
	return func(q *LatestQueue) {
		if slots > 0 {
			q.slots = slots
		}
	}
}
