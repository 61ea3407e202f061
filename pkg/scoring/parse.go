package scoring

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// BloodPressure is a parsed "systolic/diastolic" reading.
type BloodPressure struct {
	Systolic  float64
	Diastolic float64
}

// ParseBloodPressure splits a "systolic/diastolic" string. Both halves must be
// finite numbers; anything else reports ok=false.
func ParseBloodPressure(raw interface{}) (BloodPressure, bool) {
	text, ok := raw.(string)
	if !ok {
		return BloodPressure{}, false
	}

	parts := strings.Split(text, "/")
	if len(parts) != 2 {
		return BloodPressure{}, false
	}

	sys, ok := parseNumber(parts[0])
	if !ok {
		return BloodPressure{}, false
	}
	dia, ok := parseNumber(parts[1])
	if !ok {
		return BloodPressure{}, false
	}

	return BloodPressure{Systolic: sys, Diastolic: dia}, true
}

// ParseTemperature accepts a number or numeric string in degrees Fahrenheit.
func ParseTemperature(raw interface{}) (float64, bool) {
	return toFloat(raw)
}

// ParseAge accepts a number or numeric string. Fractional values are truncated
// to whole years; negative ages are rejected.
func ParseAge(raw interface{}) (int, bool) {
	value, ok := toFloat(raw)
	if !ok || value < 0 {
		return 0, false
	}
	return int(value), true
}

func toFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		return parseNumber(v.String())
	case string:
		return parseNumber(v)
	default:
		return 0, false
	}
}

func parseNumber(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return finite(value)
}

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
