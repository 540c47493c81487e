package cmd

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/sw33tLie/shopscope/pkg/catalog"
)

func newFilterFlagsCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	for _, name := range []string{"search", "vendor", "type", "available", "input-url", "ignore"} {
		c.Flags().String(name, "", "")
	}
	if err := c.Flags().Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return c
}

func TestFiltersFromFlags_KeepsSavedValues(t *testing.T) {
	saved := catalog.Filters{Search: "ipa", Vendor: "Brewdog", Available: "1"}

	got, changed := filtersFromFlags(newFilterFlagsCmd(t), saved)
	if changed {
		t.Fatal("no flag was set, filters must be reported unchanged")
	}
	if got != saved {
		t.Fatalf("unexpected filters.\nwant: %#v\ngot:  %#v", saved, got)
	}
}

func TestFiltersFromFlags_OverlaysSetFlags(t *testing.T) {
	saved := catalog.Filters{Search: "ipa", Vendor: "Brewdog", Available: "1"}

	got, changed := filtersFromFlags(newFilterFlagsCmd(t, "--vendor", "", "--type", "Gin", "--ignore", "0"), saved)
	if !changed {
		t.Fatal("expected filters to be reported changed")
	}
	want := catalog.Filters{Search: "ipa", Type: "Gin", Available: "1", Ignore: "0"}
	if got != want {
		t.Fatalf("unexpected filters.\nwant: %#v\ngot:  %#v", want, got)
	}
}

func TestParseProductID(t *testing.T) {
	if id, err := parseProductID("42"); err != nil || id != 42 {
		t.Fatalf("parseProductID(42) = %d, %v", id, err)
	}
	for _, bad := range []string{"", "abc", "0", "-3"} {
		if _, err := parseProductID(bad); err == nil {
			t.Fatalf("parseProductID(%q) should fail", bad)
		}
	}
}
