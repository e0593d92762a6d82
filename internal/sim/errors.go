package sim

import "fmt"

// InvalidTimeError indicates a negative elapsed time or a profile with a
// non-positive cook duration.
type InvalidTimeError struct {
	Seconds     float64
	CookMinutes float64
}

func (e *InvalidTimeError) Error() string {
	if e.CookMinutes <= 0 {
		return fmt.Sprintf("invalid cook duration %.1f min: must be positive", e.CookMinutes)
	}
	return fmt.Sprintf("invalid elapsed time %.1fs: must be non-negative", e.Seconds)
}
