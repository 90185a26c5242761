package services

import "testing"

func TestSanitizePathSegment(t *testing.T) {
	cases := map[string]string{
		"Acme & Sons Pvt. Ltd.": "Acme_Sons_Pvt_Ltd_",
		"GST Return (Q3)":       "GST_Return_Q3_",
		"already_safe-name":     "already_safe-name",
		"a//b":                  "a_b",
	}
	for input, expected := range cases {
		if got := SanitizePathSegment(input); got != expected {
			t.Fatalf("sanitize %q: expected %q, got %q", input, expected, got)
		}
	}
}

func TestDocumentObjectPathKeepsFileName(t *testing.T) {
	got := DocumentObjectPath("Acme Corp", "Annual Audit", "ledger 2024.pdf")
	if got != "Acme_Corp/Annual_Audit/ledger 2024.pdf" {
		t.Fatalf("unexpected object path %q", got)
	}
	if DocumentObjectPath("Acme", "Audit", "../secret") != "Acme/Audit/.._secret" {
		t.Fatalf("expected slashes in file name to be neutralised")
	}
}
