package reporting

import (
	"encoding/json"
	"io"
	"sync"

	"specrun/internal/events"
	"specrun/pkg/logging"
)

// JSONLinesReporter writes one JSON document per event for machine
// consumption.
type JSONLinesReporter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONLinesReporter creates a reporter writing to out
func NewJSONLinesReporter(out io.Writer) *JSONLinesReporter {
	return &JSONLinesReporter{enc: json.NewEncoder(out)}
}

// Apply implements Reporter
func (r *JSONLinesReporter) Apply(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enc.Encode(event); err != nil {
		logging.Error("JSONReporter", err, "Failed to encode event %d (%s)", event.Ordinal(), event.Type())
	}
}
