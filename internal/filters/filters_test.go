package filters

import (
	"testing"
)

func setAll(s *Store, pairs map[string]string) {
	for k, v := range pairs {
		s.Set(k, v)
	}
}

func TestCascadeClearsDeeperSlotsOnly(t *testing.T) {
	s := NewStore()
	s.Set("region", "A")
	s.Set("city", "B")
	s.Set("municipality", "C")
	s.Set("barangay", "D")
	s.Set("brand", "Alpha")
	s.Set("sku", "NOODLE-01")
	s.Set("year", "2025")

	s.Set("city", "X")

	params, _ := s.Active()
	want := map[string]string{
		// Shallower geography survives, the changed slot takes the new
		// value, everything deeper is cleared.
		"region": "A",
		"city":   "X",
		// The organization hierarchy and time fields are untouched.
		"brand": "Alpha",
		"sku":   "NOODLE-01",
		"year":  "2025",
	}
	if len(params) != len(want) {
		t.Fatalf("Active() = %v, want %v", params, want)
	}
	for k, v := range want {
		if params[k] != v {
			t.Errorf("Active()[%q] = %q, want %q", k, params[k], v)
		}
	}
	if _, ok := params["municipality"]; ok {
		t.Error("Expected municipality cleared by city cascade")
	}
	if _, ok := params["barangay"]; ok {
		t.Error("Expected barangay cleared by city cascade")
	}
}

func TestOrganizationCascadeIndependentOfGeography(t *testing.T) {
	s := NewStore()
	setAll(s, map[string]string{
		"region":          "NCR",
		"city":            "Manila",
		"holding_company": "HoldCo",
		"client":          "ClientCo",
		"category":        "Food",
		"brand":           "Alpha",
		"sku":             "NOODLE-01",
	})

	s.Set("client", "OtherClient")

	params, _ := s.Active()
	for _, cleared := range []string{"category", "brand", "sku"} {
		if _, ok := params[cleared]; ok {
			t.Errorf("Expected %q cleared by client cascade", cleared)
		}
	}
	if params["holding_company"] != "HoldCo" {
		t.Errorf("holding_company = %q, want HoldCo", params["holding_company"])
	}
	if params["region"] != "NCR" || params["city"] != "Manila" {
		t.Errorf("Geography changed by organization cascade: %v", params)
	}
}

func TestTimeFieldsNeverCascade(t *testing.T) {
	s := NewStore()
	setAll(s, map[string]string{
		"year": "2025", "quarter": "2", "month": "6", "week": "23", "day": "5", "hour": "14",
	})

	s.Set("month", "7")

	params, _ := s.Active()
	if len(params) != 6 {
		t.Fatalf("Expected all six time fields set, got %v", params)
	}
	if params["month"] != "7" {
		t.Errorf("month = %q, want 7", params["month"])
	}
	if params["week"] != "23" || params["day"] != "5" || params["hour"] != "14" {
		t.Errorf("Time fields cascaded unexpectedly: %v", params)
	}
}

func TestSetEmptyClearsSlotAndDeeper(t *testing.T) {
	s := NewStore()
	s.Set("region", "NCR")
	s.Set("city", "Manila")
	s.Set("municipality", "Tondo")

	s.Set("city", "")

	params, _ := s.Active()
	if len(params) != 1 || params["region"] != "NCR" {
		t.Errorf("Active() = %v, want only region", params)
	}
}

func TestUnknownKeyIgnored(t *testing.T) {
	s := NewStore()
	before := s.Generation()
	s.Set("flavor", "spicy")

	params, gen := s.Active()
	if len(params) != 0 {
		t.Errorf("Expected unknown key ignored, got %v", params)
	}
	if gen != before {
		t.Error("Expected generation unchanged for ignored key")
	}
}

func TestClear(t *testing.T) {
	s := NewStore()
	setAll(s, map[string]string{"region": "NCR", "brand": "Alpha", "year": "2025"})

	s.Clear()

	params, _ := s.Active()
	if len(params) != 0 {
		t.Errorf("Active() after Clear = %v, want empty", params)
	}
}

func TestGenerationStrictlyIncreases(t *testing.T) {
	s := NewStore()

	g1 := s.Set("region", "NCR")
	g2 := s.Set("city", "Manila")
	g3 := s.Clear()

	if !(g1 < g2 && g2 < g3) {
		t.Errorf("Generations not strictly increasing: %d %d %d", g1, g2, g3)
	}
}

func TestActiveReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Set("region", "NCR")

	params, _ := s.Active()
	params["region"] = "mutated"

	if v, _ := s.Get("region"); v != "NCR" {
		t.Errorf("Store mutated through Active() copy: %q", v)
	}
}
