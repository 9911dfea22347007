// Package progress reports scan pass progress to an interested observer,
// typically the CLI.
package progress

import "github.com/edgecache/cachereport/internal/domain"

// Reporter receives pass lifecycle events
type Reporter interface {
	// PassStarted fires once when scanning begins
	PassStarted(root string)

	// BatchFlushed fires after each flush with the number of objects
	// delivered in that batch and the cumulative total so far
	BatchFlushed(delivered, cumulative int)

	// PassCompleted fires once with the final counters
	PassCompleted(stats domain.PassStats)
}

// Callback receives progress updates
type Callback func(update Update)

// UpdateType indicates the kind of progress update
type UpdateType int

const (
	UpdateStart UpdateType = iota
	UpdateFlush
	UpdateDone
)

// Update is one progress event
type Update struct {
	Type       UpdateType
	Root       string
	Delivered  int
	Cumulative int
	Stats      domain.PassStats
}

// CallbackReporter implements Reporter with a callback function
type CallbackReporter struct {
	callback Callback
}

// NewCallbackReporter wraps a callback as a Reporter
func NewCallbackReporter(cb Callback) *CallbackReporter {
	return &CallbackReporter{callback: cb}
}

func (r *CallbackReporter) PassStarted(root string) {
	r.callback(Update{Type: UpdateStart, Root: root})
}

func (r *CallbackReporter) BatchFlushed(delivered, cumulative int) {
	r.callback(Update{Type: UpdateFlush, Delivered: delivered, Cumulative: cumulative})
}

func (r *CallbackReporter) PassCompleted(stats domain.PassStats) {
	r.callback(Update{Type: UpdateDone, Stats: stats})
}

// NullReporter discards all events
type NullReporter struct{}

func (NullReporter) PassStarted(string)             {}
func (NullReporter) BatchFlushed(int, int)          {}
func (NullReporter) PassCompleted(domain.PassStats) {}
