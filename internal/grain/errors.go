package grain

import "fmt"

// UnknownGrainError indicates a grain id that is not registered.
type UnknownGrainError struct {
	ID string
}

func (e *UnknownGrainError) Error() string {
	return fmt.Sprintf("unknown grain %q", e.ID)
}

// InvalidWeightError indicates a non-positive grain weight.
type InvalidWeightError struct {
	Grams float64
}

func (e *InvalidWeightError) Error() string {
	return fmt.Sprintf("invalid grain weight %.1fg: must be positive", e.Grams)
}
