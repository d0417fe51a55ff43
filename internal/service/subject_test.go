package service

import "testing"

func TestSanitizeSubject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "need help", "need help"},
		{"trims whitespace", "   need help   ", "need help"},
		{"strips unsafe characters", "help <now> *please*", "help now please"},
		{"keeps allowed punctuation", "why? costs - 40% (est.) & fees!", "why? costs - 40% (est.) & fees!"},
		{"drops long words", "urgent password required", "urgent"},
		{"drops long words case insensitively", "URGENT Password REQUIRED now", "URGENT now"},
		{"collapses whitespace", "a    b\t\tc", "a b c"},
		{"all words dropped", "absolutely horrendous", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSubject(tc.in); got != tc.want {
				t.Errorf("SanitizeSubject(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestStoredSubject(t *testing.T) {
	category := "Leave & Attendance"
	subcategory := "Leave Balance Query"

	got := StoredSubject("need help", &category, &subcategory)
	want := "[Leave & Attendance - Leave Balance Query] need help"
	if got != want {
		t.Errorf("StoredSubject = %q, want %q", got, want)
	}

	if got := StoredSubject("need help", nil, nil); got != "need help" {
		t.Errorf("StoredSubject without category = %q, want %q", got, "need help")
	}

	empty := ""
	if got := StoredSubject("need help", &category, &empty); got != "need help" {
		t.Errorf("StoredSubject with empty subcategory = %q, want %q", got, "need help")
	}
}

func TestEditableSubjectRoundTrip(t *testing.T) {
	category := "Leave & Attendance"
	subcategory := "Leave Balance Query"

	stored := StoredSubject("need help", &category, &subcategory)
	if got := EditableSubject(stored); got != "need help" {
		t.Errorf("EditableSubject(%q) = %q, want %q", stored, got, "need help")
	}

	if got := EditableSubject("no prefix here"); got != "no prefix here" {
		t.Errorf("EditableSubject without prefix = %q", got)
	}

	// An opening bracket with no close is left alone.
	if got := EditableSubject("[dangling prefix"); got != "[dangling prefix" {
		t.Errorf("EditableSubject with dangling bracket = %q", got)
	}
}
