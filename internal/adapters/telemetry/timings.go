package telemetry

import (
	"fmt"
	"time"
)

// PhaseTiming records one finished span.
type PhaseTiming struct {
	SpanID   string
	ParentID string // May be empty if root
	Name     string
	Start    time.Time
	Duration time.Duration
	Err      error
}

// String formats the timing for the debug log.
func (p PhaseTiming) String() string {
	if p.Err != nil {
		return fmt.Sprintf("phase %s failed after %s: %v", p.Name, p.Duration.Round(time.Microsecond), p.Err)
	}
	return fmt.Sprintf("phase %s finished in %s", p.Name, p.Duration.Round(time.Microsecond))
}
