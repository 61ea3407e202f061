package scoring

import "testing"

func TestBloodPressureScoreStages(t *testing.T) {
	cases := []struct {
		name     string
		sys, dia float64
		want     int
	}{
		{"normal", 115, 75, 1},
		{"elevated", 125, 75, 2},
		{"elevated systolic with stage one diastolic", 125, 85, 3},
		{"stage one systolic", 135, 70, 3},
		{"stage one diastolic", 110, 80, 3},
		{"stage two systolic", 140, 70, 4},
		{"stage two diastolic", 118, 90, 4},
		{"both stage two", 180, 120, 4},
		{"boundary 120/80", 120, 80, 3},
		{"boundary 119/79", 119, 79, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BloodPressureScore(tc.sys, tc.dia); got != tc.want {
				t.Fatalf("BloodPressureScore(%v, %v) = %d, want %d", tc.sys, tc.dia, got, tc.want)
			}
		})
	}
}

func TestBloodPressureScoreMonotonic(t *testing.T) {
	for sys := 60.0; sys <= 220; sys++ {
		for dia := 40.0; dia <= 140; dia++ {
			score := BloodPressureScore(sys, dia)
			if score < 0 || score > 4 {
				t.Fatalf("score %d out of range for %v/%v", score, sys, dia)
			}
			if next := BloodPressureScore(sys+1, dia); next < score {
				t.Fatalf("score decreased raising systolic at %v/%v: %d -> %d", sys, dia, score, next)
			}
			if next := BloodPressureScore(sys, dia+1); next < score {
				t.Fatalf("score decreased raising diastolic at %v/%v: %d -> %d", sys, dia, score, next)
			}
		}
	}
}

func TestTemperatureScore(t *testing.T) {
	cases := []struct {
		in   interface{}
		want int
	}{
		{101.0, 2},
		{103.2, 2},
		{100.0, 1},
		{99.6, 1},
		{100.9, 1},
		{99.5, 0},
		{98.6, 0},
		{"101", 2},
		{" 99.8 ", 1},
		{"abc", 0},
		{"", 0},
		{nil, 0},
		{"NaN", 0},
	}

	for _, tc := range cases {
		if got := TemperatureScoreOf(tc.in); got != tc.want {
			t.Errorf("TemperatureScoreOf(%#v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestAgeScore(t *testing.T) {
	cases := []struct {
		age  int
		want int
	}{
		{70, 2},
		{66, 2},
		{65, 1},
		{50, 1},
		{40, 1},
		{10, 1},
		{0, 1},
		{-5, 0},
	}

	for _, tc := range cases {
		if got := AgeScore(tc.age); got != tc.want {
			t.Errorf("AgeScore(%d) = %d, want %d", tc.age, got, tc.want)
		}
	}

	if got := AgeScoreOf("fifty-three"); got != 0 {
		t.Errorf("expected 0 for unparsable age, got %d", got)
	}
	if got := AgeScoreOf("72"); got != 2 {
		t.Errorf("expected 2 for string age 72, got %d", got)
	}
}

func TestTotalIsSumOfComponents(t *testing.T) {
	for _, bp := range []string{"110/70", "125/70", "135/85", "150/95"} {
		for _, temp := range []float64{98.0, 100.0, 102.0} {
			for _, age := range []float64{30, 50, 80} {
				rec := map[string]interface{}{
					"patient_id":     "P",
					"blood_pressure": bp,
					"temperature":    temp,
					"age":            age,
				}
				patient, ok := Normalize(rec)
				if !ok {
					t.Fatal("expected record to normalize")
				}
				want := BloodPressureScoreOf(bp) + TemperatureScore(temp) + AgeScore(int(age))
				if patient.Total != want {
					t.Fatalf("total %d, want %d for %s/%v/%v", patient.Total, want, bp, temp, age)
				}
				if patient.Total < 0 || patient.Total > MaxTotal {
					t.Fatalf("total %d out of range", patient.Total)
				}
			}
		}
	}
}

func TestParseBloodPressureRejectsMalformed(t *testing.T) {
	for _, raw := range []interface{}{"bad/data", "120/", "/80", "120", "120/80/70", "", nil, 120, "INVALID"} {
		if _, ok := ParseBloodPressure(raw); ok {
			t.Errorf("expected %#v to be rejected", raw)
		}
	}

	bp, ok := ParseBloodPressure(" 142 / 91 ")
	if !ok || bp.Systolic != 142 || bp.Diastolic != 91 {
		t.Fatalf("unexpected parse result %+v ok=%v", bp, ok)
	}
}

func TestScoreVitals(t *testing.T) {
	score := ScoreVitals(VitalsInput{Systolic: "145", Diastolic: "85", Temperature: "100.2", Age: 70})
	if score.Total != 7 {
		t.Fatalf("expected total 7, got %d (%s)", score.Total, score)
	}
	if score.Risk != RiskHigh || score.Fever != FeverLow {
		t.Fatalf("unexpected labels: risk=%s fever=%s", score.Risk, score.Fever)
	}
	if !score.Valid() {
		t.Fatalf("expected valid inputs, got invalid %v", score.InvalidFields)
	}

	score = ScoreVitals(VitalsInput{Systolic: "abc", Diastolic: 70, Temperature: 98.1, Age: "-3"})
	if score.Total != 0 || score.Risk != RiskLow {
		t.Fatalf("expected zero low-risk score, got %s", score)
	}
	if len(score.InvalidFields) != 2 || score.InvalidFields[0] != "systolic" || score.InvalidFields[1] != "age" {
		t.Fatalf("unexpected invalid fields %v", score.InvalidFields)
	}
}
