package grid

import "fmt"

// ConfigurationError reports a decomposition that cannot be run. It is always
// detected before any communication takes place.
type ConfigurationError struct {
	Participant int // -1 when the error is not tied to one participant
	Reason      string
}

func (e *ConfigurationError) Error() string {
	if e.Participant < 0 {
		return "configuration: " + e.Reason
	}
	return fmt.Sprintf("configuration: participant %d: %s", e.Participant, e.Reason)
}

func configErrorf(participant int, format string, args ...any) error {
	return &ConfigurationError{Participant: participant, Reason: fmt.Sprintf(format, args...)}
}
