package planner

// Config holds the planner's scheduling knobs. Values are externally supplied
// and default to the standard operating profile.
type Config struct {
	MaxFuelDistanceMiles float64 // fuel stop every this many miles
	MergeBufferMiles     float64 // fuel/break stops closer than this merge
	FuelStopMinutes      float64
	PickupDwellHours     float64
	DeliveryDwellHours   float64
	// ResetLegProportion is where along a leg a daily reset lands when the
	// leg's projected on-duty time overruns the window.
	ResetLegProportion float64
}

// DefaultConfig returns the standard planning profile.
func DefaultConfig() Config {
	return Config{
		MaxFuelDistanceMiles: 1000,
		MergeBufferMiles:     50,
		FuelStopMinutes:      30,
		PickupDwellHours:     1,
		DeliveryDwellHours:   1,
		ResetLegProportion:   0.8,
	}
}
