package scoring

import "fmt"

// Risk bands reported for a manual score.
const (
	RiskLow      = "low"
	RiskModerate = "moderate"
	RiskHigh     = "high"
)

// Fever labels.
const (
	FeverNone = "normal"
	FeverLow  = "low_fever"
	FeverHigh = "high_fever"
)

// VitalsInput carries the four manual inputs. Values may be text or numbers.
type VitalsInput struct {
	Systolic    interface{} `json:"systolic"`
	Diastolic   interface{} `json:"diastolic"`
	Temperature interface{} `json:"temperature"`
	Age         interface{} `json:"age"`
}

type VitalsScore struct {
	BloodPressureScore int      `json:"blood_pressure_score"`
	TemperatureScore   int      `json:"temperature_score"`
	AgeScore           int      `json:"age_score"`
	Total              int      `json:"total"`
	Risk               string   `json:"risk"`
	Fever              string   `json:"fever"`
	InvalidFields      []string `json:"invalid_fields"`
}

// ScoreVitals computes the score for a single set of manually entered vitals.
func ScoreVitals(in VitalsInput) VitalsScore {
	out := VitalsScore{InvalidFields: []string{}}

	sys, sysOK := toFloat(in.Systolic)
	dia, diaOK := toFloat(in.Diastolic)
	if !sysOK {
		out.InvalidFields = append(out.InvalidFields, "systolic")
	}
	if !diaOK {
		out.InvalidFields = append(out.InvalidFields, "diastolic")
	}
	if sysOK && diaOK {
		out.BloodPressureScore = BloodPressureScore(sys, dia)
	}

	out.Fever = FeverNone
	if temp, ok := ParseTemperature(in.Temperature); ok {
		out.TemperatureScore = TemperatureScore(temp)
		switch out.TemperatureScore {
		case 2:
			out.Fever = FeverHigh
		case 1:
			out.Fever = FeverLow
		}
	} else {
		out.InvalidFields = append(out.InvalidFields, "temperature")
	}

	if age, ok := ParseAge(in.Age); ok {
		out.AgeScore = AgeScore(age)
	} else {
		out.InvalidFields = append(out.InvalidFields, "age")
	}

	out.Total = out.BloodPressureScore + out.TemperatureScore + out.AgeScore
	out.Risk = RiskBand(out.Total)
	return out
}

// RiskBand labels a total score.
func RiskBand(total int) string {
	switch {
	case total >= HighRiskTotal:
		return RiskHigh
	case total >= 2:
		return RiskModerate
	default:
		return RiskLow
	}
}

// Valid reports whether every input parsed.
func (s VitalsScore) Valid() bool {
	return len(s.InvalidFields) == 0
}

func (s VitalsScore) String() string {
	return fmt.Sprintf("total=%d (bp=%d temp=%d age=%d) risk=%s", s.Total, s.BloodPressureScore, s.TemperatureScore, s.AgeScore, s.Risk)
}
