package sequence

import (
	"testing"
	"time"
)

func TestFormatNumeroFacture(t *testing.T) {
	day := time.Date(2026, 3, 14, 17, 0, 0, 0, time.UTC)

	if got := FormatNumeroFacture(day, 7); got != "F-20260314-007" {
		t.Errorf("got %s", got)
	}
	if got := FormatNumeroFacture(day, 1234); got != "F-20260314-1234" {
		t.Errorf("overflow beyond 3 digits must keep the full number, got %s", got)
	}
	if got := FactureSequenceName(day); got != "factures:20260314" {
		t.Errorf("got %s", got)
	}
}

func TestFormatCodePatient(t *testing.T) {
	if got := FormatCodePatient("CAB01", 2026, 42); got != "CAB01-2026-00042" {
		t.Errorf("got %s", got)
	}
	if got := PatientSequenceName(2026); got != "patients:2026" {
		t.Errorf("got %s", got)
	}
}
