package collision

// Config holds the tunables of the probe, bounce and wheel logic.
type Config struct {
	LookAhead        float64 // primary probe length
	MinProbeSpeed    float64 // below this the kart has no heading
	ProbeLift        float64 // primary probe origin above the kart
	EdgeProbeAhead   float64 // edge probe origin along the heading
	EdgeProbeLift    float64
	EdgeProbeFar     float64
	EdgeOffset       float64 // distance reported for a synthesized track edge
	BounceStrength   float64
	MinBounceSpeed   float64
	WheelRayFar      float64
	WheelClearance   float64
	DirtThresholdY   float64
	OnTrackDistance  float64
	OnTrackLift      float64
	MultiProbeDegree float64
}

// DefaultConfig returns the standard kart tuning.
func DefaultConfig() Config {
	return Config{
		LookAhead:        2.0,
		MinProbeSpeed:    0.1,
		ProbeLift:        0.5,
		EdgeProbeAhead:   1.5,
		EdgeProbeLift:    2.0,
		EdgeProbeFar:     5.0,
		EdgeOffset:       0.5,
		BounceStrength:   0.8,
		MinBounceSpeed:   2.0,
		WheelRayFar:      3.0,
		WheelClearance:   0.3,
		DirtThresholdY:   0.5,
		OnTrackDistance:  3.0,
		OnTrackLift:      2.0,
		MultiProbeDegree: 45,
	}
}
