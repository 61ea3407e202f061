// Package scoring turns vital signs into a deterministic integer risk score and
// classifies batches of patient records into alert sets.
package scoring

// Score thresholds.
const (
	FeverThreshold     = 99.6
	HighFeverThreshold = 101.0
	SeniorAge          = 65
	HighRiskTotal      = 4
	MaxTotal           = 8
)

// BloodPressureScore stages a reading. When systolic and diastolic fall in
// different stages the higher stage wins.
func BloodPressureScore(systolic, diastolic float64) int {
	switch {
	case systolic >= 140 || diastolic >= 90:
		return 4
	case systolic >= 130 || diastolic >= 80:
		return 3
	case systolic >= 120 && diastolic < 80:
		return 2
	case systolic < 120 && diastolic < 80:
		return 1
	default:
		return 0
	}
}

// TemperatureScore: 2 for high fever, 1 for low fever, 0 otherwise.
func TemperatureScore(fahrenheit float64) int {
	switch {
	case fahrenheit >= HighFeverThreshold:
		return 2
	case fahrenheit >= FeverThreshold:
		return 1
	default:
		return 0
	}
}

// AgeScore: 2 above 65, 1 for any other non-negative age, 0 for negative ages.
func AgeScore(age int) int {
	switch {
	case age < 0:
		return 0
	case age > SeniorAge:
		return 2
	default:
		return 1
	}
}

// TemperatureScoreOf scores raw input and yields 0 when it cannot be parsed.
func TemperatureScoreOf(raw interface{}) int {
	value, ok := ParseTemperature(raw)
	if !ok {
		return 0
	}
	return TemperatureScore(value)
}

// AgeScoreOf scores raw input and yields 0 when it cannot be parsed.
func AgeScoreOf(raw interface{}) int {
	age, ok := ParseAge(raw)
	if !ok {
		return 0
	}
	return AgeScore(age)
}

// BloodPressureScoreOf scores a raw "systolic/diastolic" string, 0 when unparsable.
func BloodPressureScoreOf(raw interface{}) int {
	bp, ok := ParseBloodPressure(raw)
	if !ok {
		return 0
	}
	return BloodPressureScore(bp.Systolic, bp.Diastolic)
}
