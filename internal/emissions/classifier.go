package emissions

// Level is the qualitative bucket for an emissions total.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// Classification thresholds in kg CO2. The three bands partition the
// non-negative reals: [0, 50) Low, [50, 100) Medium, [100, ∞) High.
const (
	ThresholdMedium = 50
	ThresholdHigh   = 100
)

// Classify maps an emissions total to its level. This is the single canonical
// policy; every surface (dashboard, history, admin listings, reports) uses it.
func Classify(total float64) Level {
	switch {
	case total < ThresholdMedium:
		return LevelLow
	case total < ThresholdHigh:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// ValidLevel reports whether the string is a known level name.
func ValidLevel(s string) bool {
	switch Level(s) {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	default:
		return false
	}
}
