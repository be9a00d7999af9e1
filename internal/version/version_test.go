package version

import (
	"strings"
	"testing"
)

func TestCurrent(t *testing.T) {
	b := Current()
	if b.Version == "" || b.Commit == "" || b.Date == "" {
		t.Fatalf("build info has empty fields: %+v", b)
	}
}

func TestBuildString(t *testing.T) {
	b := Build{Version: "1.2.3", Commit: "abc123", Date: "2026-01-01"}
	s := b.String()
	for _, part := range []string{"1.2.3", "abc123", "2026-01-01"} {
		if !strings.Contains(s, part) {
			t.Errorf("String() = %q, want it to contain %q", s, part)
		}
	}
}
