package triage

import (
	"testing"
)

func intp(v int) *int          { return &v }
func floatp(v float64) *float64 { return &v }

func TestClassifyCardiacArrest(t *testing.T) {
	got := Classify(PresentationInput{ChiefComplaint: "parada cardiorrespiratória"})
	if got.Priority != PriorityRed {
		t.Errorf("expected red, got %s", got.Priority)
	}
	if got.RecommendedTime != "Imediato" {
		t.Errorf("expected Imediato, got %q", got.RecommendedTime)
	}
}

func TestClassifyMildHeadache(t *testing.T) {
	got := Classify(PresentationInput{
		ChiefComplaint: "dor de cabeça",
		VitalSigns:     &VitalSigns{PainScale: intp(2)},
	})
	if got.Priority != PriorityGreen {
		t.Errorf("expected green, got %s", got.Priority)
	}
	if got.RecommendedTime != "2-4 horas" {
		t.Errorf("expected 2-4 horas, got %q", got.RecommendedTime)
	}
}

func TestClassifyFeverVitalsBeatComplaintTier(t *testing.T) {
	// "febre" alone is a green complaint, but 39.2°C crosses the urgent
	// fever threshold and the higher tier wins.
	got := Classify(PresentationInput{
		ChiefComplaint: "febre",
		VitalSigns:     &VitalSigns{Temperature: floatp(39.2)},
	})
	if got.Priority != PriorityYellow {
		t.Errorf("expected yellow, got %s", got.Priority)
	}
	if got.RecommendedTime != "1 hora" {
		t.Errorf("expected 1 hora, got %q", got.RecommendedTime)
	}
}

func TestClassifyDefaultsToBlue(t *testing.T) {
	got := Classify(PresentationInput{ChiefComplaint: "receita de renovação"})
	if got.Priority != PriorityBlue {
		t.Errorf("expected blue, got %s", got.Priority)
	}
	if got.RecommendedTime != "4-24 horas" {
		t.Errorf("expected 4-24 horas, got %q", got.RecommendedTime)
	}
}

func TestClassifyEmptyInputIsTotal(t *testing.T) {
	got := Classify(PresentationInput{})
	if got.Priority != PriorityBlue {
		t.Errorf("expected blue for empty input, got %s", got.Priority)
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	got := Classify(PresentationInput{ChiefComplaint: "PARADA CARDIORRESPIRATÓRIA"})
	if got.Priority != PriorityRed {
		t.Errorf("expected red regardless of case, got %s", got.Priority)
	}
}

func TestClassifyVitalThresholds(t *testing.T) {
	cases := []struct {
		name   string
		vitals VitalSigns
		want   PriorityLevel
	}{
		{"respiratory collapse", VitalSigns{RespiratoryRate: intp(6)}, PriorityRed},
		{"tachypnea extreme", VitalSigns{RespiratoryRate: intp(40)}, PriorityRed},
		{"bradycardia extreme", VitalSigns{HeartRate: intp(35)}, PriorityRed},
		{"tachycardia extreme", VitalSigns{HeartRate: intp(160)}, PriorityRed},
		{"hypotension", VitalSigns{BloodPressureSys: intp(70)}, PriorityRed},
		{"hypoxia", VitalSigns{OxygenSaturation: intp(85)}, PriorityRed},
		{"tachypnea moderate", VitalSigns{RespiratoryRate: intp(32)}, PriorityOrange},
		{"bradycardia moderate", VitalSigns{HeartRate: intp(45)}, PriorityOrange},
		{"tachycardia moderate", VitalSigns{HeartRate: intp(140)}, PriorityOrange},
		{"severe pain scale", VitalSigns{PainScale: intp(9)}, PriorityOrange},
		{"hyperpyrexia", VitalSigns{Temperature: floatp(40.0)}, PriorityOrange},
		{"fever", VitalSigns{Temperature: floatp(38.8)}, PriorityYellow},
		{"moderate pain scale", VitalSigns{PainScale: intp(6)}, PriorityYellow},
		{"normal vitals", VitalSigns{RespiratoryRate: intp(16), HeartRate: intp(80), Temperature: floatp(36.8), PainScale: intp(1)}, PriorityBlue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vitals := tc.vitals
			got := Classify(PresentationInput{ChiefComplaint: "avaliação", VitalSigns: &vitals})
			if got.Priority != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got.Priority)
			}
		})
	}
}

func TestClassifyUnconsciousIsRed(t *testing.T) {
	got := Classify(PresentationInput{
		ChiefComplaint: "queda",
		Presentation:   PresentationStretcher,
		Consciousness:  ConsciousnessUnconscious,
	})
	if got.Priority != PriorityRed {
		t.Errorf("expected red, got %s", got.Priority)
	}
}

func TestClassifyStretcherAloneIsNotRed(t *testing.T) {
	got := Classify(PresentationInput{
		ChiefComplaint: "dor muscular",
		Presentation:   PresentationStretcher,
		Consciousness:  ConsciousnessAlert,
	})
	if got.Priority != PriorityGreen {
		t.Errorf("expected green, got %s", got.Priority)
	}
}

func TestClassifyDiscriminators(t *testing.T) {
	cases := []struct {
		discriminator string
		want          PriorityLevel
	}{
		{"sem pulso", PriorityRed},
		{"hemorragia arterial", PriorityRed},
		{"dor intensa ao caminhar", PriorityOrange},
		{"queimadura no braço", PriorityOrange},
		{"fratura no tornozelo", PriorityOrange},
	}
	for _, tc := range cases {
		got := Classify(PresentationInput{
			ChiefComplaint: "avaliação",
			Discriminators: []string{tc.discriminator},
		})
		if got.Priority != tc.want {
			t.Errorf("discriminator %q: expected %s, got %s", tc.discriminator, tc.want, got.Priority)
		}
	}
}

func TestClassifyWaterfallShortCircuits(t *testing.T) {
	// An input matching red and green clauses at once must classify red.
	got := Classify(PresentationInput{
		ChiefComplaint: "febre e parada respiratória",
		VitalSigns:     &VitalSigns{Temperature: floatp(39.0)},
	})
	if got.Priority != PriorityRed {
		t.Errorf("expected red to short-circuit, got %s", got.Priority)
	}
}

func TestClassifyMissingVitalsNeverMatch(t *testing.T) {
	// Absent measurements must be skipped, never treated as zero (a zero
	// respiratory rate would otherwise classify red).
	got := Classify(PresentationInput{ChiefComplaint: "tosse", VitalSigns: &VitalSigns{}})
	if got.Priority != PriorityGreen {
		t.Errorf("expected green, got %s", got.Priority)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	input := PresentationInput{
		ChiefComplaint: "dor torácica intensa",
		VitalSigns:     &VitalSigns{HeartRate: intp(120), PainScale: intp(7)},
		Discriminators: []string{"dor intensa"},
	}
	first := Classify(input)
	for i := 0; i < 50; i++ {
		if got := Classify(input); got != first {
			t.Fatalf("classification changed between calls: %+v vs %+v", first, got)
		}
	}
}

func TestClassifyReasoningNamesTheMatch(t *testing.T) {
	got := Classify(PresentationInput{ChiefComplaint: "paciente em choque"})
	if got.Reasoning == "" {
		t.Fatal("expected non-empty reasoning")
	}
	if got.Priority != PriorityRed {
		t.Errorf("expected red, got %s", got.Priority)
	}
}
