package sim

// Classify maps gelatinization progress to the grain transformation label.
// It is a stateless classification, re-derived from the scalar on demand.
func Classify(progress float64) Transformation {
	switch {
	case progress <= 0:
		return TransformHydration
	case progress < gelAtTransfer:
		return TransformGelOnset
	case progress < 100:
		return TransformGelComplete
	default:
		return TransformFullyCooked
	}
}
