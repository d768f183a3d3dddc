package service

import "testing"

func TestIsValidISODate(t *testing.T) {
	valid := []string{"2025-09-26", "1999-01-01"}
	for _, s := range valid {
		if !IsValidISODate(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	invalid := []string{"", "2025-9-26", "26-09-2025", "2025-09-26T00:00:00Z", "next Friday"}
	for _, s := range invalid {
		if IsValidISODate(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestIsValidTimeHHMM(t *testing.T) {
	valid := []string{"00:00", "09:30", "15:00", "23:59"}
	for _, s := range valid {
		if !IsValidTimeHHMM(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	invalid := []string{"", "24:00", "15:60", "9:00", "15:0", "3pm"}
	for _, s := range invalid {
		if IsValidTimeHHMM(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}
