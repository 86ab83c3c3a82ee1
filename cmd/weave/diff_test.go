package main

import (
	"slices"
	"testing"
)

func TestSplitItems(t *testing.T) {
	got := splitItems("a,b c,,d")
	if want := []string{"a", "b", "c", "d"}; !slices.Equal(got, want) {
		t.Errorf("splitItems() = %v, want %v", got, want)
	}
}

func TestRunDiff(t *testing.T) {
	cases := []struct {
		name     string
		from, to []string
		keyed    bool
	}{
		{"keyed rotate", []string{"a", "b", "c"}, []string{"c", "a", "b", "d"}, true},
		{"keyed clear", []string{"a", "b"}, nil, true},
		{"unkeyed shrink", []string{"a", "b", "c"}, []string{"a", "c"}, false},
		{"identical", []string{"a"}, []string{"a"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := runDiff(tc.from, tc.to, tc.keyed); err != nil {
				t.Errorf("runDiff: %v", err)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Address == "" {
		t.Error("default config should have an address")
	}
}
