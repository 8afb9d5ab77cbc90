package sim

import "fmt"

// ConfigurationError reports an invalid configuration field. It is raised at
// validation time, before any event is scheduled; a run either starts with a
// valid configuration or not at all.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// InvalidScheduleError reports an attempt to schedule an event strictly in the
// past relative to the current clock. It indicates an internal logic defect and
// is never caught and retried.
type InvalidScheduleError struct {
	Clock     int64
	Timestamp int64
}

func (e *InvalidScheduleError) Error() string {
	return fmt.Sprintf("cannot schedule event at tick %d: clock is already at %d", e.Timestamp, e.Clock)
}
