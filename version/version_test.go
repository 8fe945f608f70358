package version

import "testing"

func TestGetFullVersion(t *testing.T) {
	if got := GetFullVersion(); got != "dev" {
		t.Errorf("GetFullVersion failed: expected dev, got %s", got)
	}

	Version, GitCommit, BuildDate = "1.2.0", "abc1234", "2024-03-01"
	defer func() { Version, GitCommit, BuildDate = "dev", "unknown", "unknown" }()

	expected := "1.2.0 (commit abc1234, built 2024-03-01)"
	if got := GetFullVersion(); got != expected {
		t.Errorf("GetFullVersion failed: expected %s, got %s", expected, got)
	}
	if got := GetVersion(); got != "1.2.0" {
		t.Errorf("GetVersion failed: expected 1.2.0, got %s", got)
	}
}
