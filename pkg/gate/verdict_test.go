package gate

import "testing"

func TestClassifyTable(t *testing.T) {
	cases := []struct {
		score  int
		strict bool
		want   Class
	}{
		{10, true, Accepted},
		{10, false, Accepted},
		{9, true, Accepted},
		{8, true, ConditionallyAccepted},
		{8, false, Accepted},
		{7, true, ConditionallyAccepted},
		{7, false, Accepted},
		{6, true, NeedsRevision},
		{6, false, NeedsRevision},
		{5, false, NeedsRevision},
		{4, true, Rejected},
		{4, false, Rejected},
		{1, true, Rejected},
	}

	for _, tc := range cases {
		got := Classify(tc.score, tc.strict)
		if got != tc.want {
			t.Errorf("Classify(%d, strict=%v) = %s, want %s", tc.score, tc.strict, got, tc.want)
		}
	}
}

func TestProgressable(t *testing.T) {
	cases := []struct {
		class  Class
		strict bool
		want   bool
	}{
		{Accepted, true, true},
		{Accepted, false, true},
		{ConditionallyAccepted, true, true},
		{ConditionallyAccepted, false, true},
		{NeedsRevision, true, false},
		{NeedsRevision, false, true},
		{Rejected, true, false},
		{Rejected, false, false},
	}

	for _, tc := range cases {
		if got := tc.class.Progressable(tc.strict); got != tc.want {
			t.Errorf("%s.Progressable(strict=%v) = %v, want %v", tc.class, tc.strict, got, tc.want)
		}
	}
}

func TestNewVerdictRange(t *testing.T) {
	if _, err := NewVerdict(0, true, "", nil); err == nil {
		t.Error("score 0 should be rejected")
	}
	if _, err := NewVerdict(11, true, "", nil); err == nil {
		t.Error("score 11 should be rejected")
	}
	v, err := NewVerdict(7, false, "fine", nil)
	if err != nil {
		t.Fatalf("score 7: %v", err)
	}
	if v.Class != Accepted {
		t.Errorf("score 7 fast mode should classify accepted, got %s", v.Class)
	}
}
