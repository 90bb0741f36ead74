package triage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPriorityRankOrdering(t *testing.T) {
	ordered := []PriorityLevel{PriorityRed, PriorityOrange, PriorityYellow, PriorityGreen, PriorityBlue}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Rank() >= ordered[i].Rank() {
			t.Errorf("expected %s to rank before %s", ordered[i-1], ordered[i])
		}
	}
}

func TestPriorityRankUnknownLast(t *testing.T) {
	if PriorityLevel("magenta").Rank() <= PriorityBlue.Rank() {
		t.Error("unknown priority must rank after blue")
	}
}

func TestParsePriority(t *testing.T) {
	for _, token := range []string{"red", "orange", "yellow", "green", "blue"} {
		p, err := ParsePriority(token)
		if err != nil {
			t.Errorf("ParsePriority(%q): %v", token, err)
		}
		if string(p) != token {
			t.Errorf("ParsePriority(%q) = %q", token, p)
		}
	}
	if _, err := ParsePriority("RED"); err == nil {
		t.Error("tokens are lowercase only, expected error for RED")
	}
	if _, err := ParsePriority(""); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestPrioritySerializesAsLowercaseToken(t *testing.T) {
	raw, err := json.Marshal(PriorityOrange)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `"orange"` {
		t.Errorf("expected \"orange\", got %s", raw)
	}
}

func TestTriageTimeSerializesAsUTC(t *testing.T) {
	rec := TriageRecord{
		ID:         uuid.New(),
		TriageTime: time.Date(2025, 3, 9, 14, 30, 0, 0, time.UTC),
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if got := decoded["triage_time"]; got != "2025-03-09T14:30:00Z" {
		t.Errorf("expected ISO-8601 UTC timestamp, got %v", got)
	}
}

func TestOverridden(t *testing.T) {
	rec := TriageRecord{CalculatedPriority: PriorityGreen, FinalPriority: PriorityGreen}
	if rec.Overridden() {
		t.Error("identical priorities must not report overridden")
	}
	rec.FinalPriority = PriorityRed
	if !rec.Overridden() {
		t.Error("diverging priorities must report overridden")
	}
}
