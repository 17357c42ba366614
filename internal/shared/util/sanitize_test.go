package util

import "testing"

func TestSanitizeFileName(t *testing.T) {
	got, err := SanitizeFileName("  reports/2026\\summary.pdf ")
	if err != nil {
		t.Fatalf("SanitizeFileName: %v", err)
	}
	if got != "reports_2026_summary.pdf" {
		t.Fatalf("unexpected name %q", got)
	}

	for _, name := range []string{"", "   ", "../../etc/passwd", "a..b.pdf"} {
		if _, err := SanitizeFileName(name); err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}
