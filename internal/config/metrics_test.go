package config

import "testing"

func TestNormalizeEnvironment(t *testing.T) {
	cases := map[string]string{
		"":            "unknown",
		"  ":          "unknown",
		"Dev":         "dev",
		"  STAGING  ": "staging",
		"prod":        "prod",
	}
	for in, want := range cases {
		if got := normalizeEnvironment(in); got != want {
			t.Fatalf("normalizeEnvironment(%q) = %q, want %q", in, got, want)
		}
	}
}
