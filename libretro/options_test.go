package libretro

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	emucore "github.com/folium-app/mango/api"
)

func TestParseVariable(t *testing.T) {
	testCases := []struct {
		name string
		key  string
		desc string
		want emucore.CoreOption
	}{
		{
			name: "select",
			key:  "snes9x_overclock",
			desc: "SuperFX Overclocking; 10MHz (Default)|20MHz|40MHz",
			want: emucore.CoreOption{
				Key:     "snes9x_overclock",
				Label:   "SuperFX Overclocking",
				Default: "10MHz (Default)",
				Values:  []string{"10MHz (Default)", "20MHz", "40MHz"},
			},
		},
		{
			name: "bool",
			key:  "snes9x_layer_1",
			desc: "Show layer 1; enabled|disabled",
			want: emucore.CoreOption{
				Key:     "snes9x_layer_1",
				Label:   "Show layer 1",
				Default: "enabled",
				Values:  []string{"enabled", "disabled"},
			},
		},
		{
			name: "no values",
			key:  "broken",
			desc: "Broken option",
			want: emucore.CoreOption{Key: "broken", Label: "Broken option"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseVariable(tc.key, tc.desc)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("parseVariable mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestVariables(t *testing.T) {
	v := newVariables(map[string]string{"region": "PAL"})
	v.declare("region", "Region; Auto|NTSC|PAL")
	v.declare("blargg", "Blargg filter; disabled|enabled")

	if !v.takeUpdate() {
		t.Fatal("expected update after declare")
	}
	if v.takeUpdate() {
		t.Fatal("update should be cleared")
	}

	testCases := []struct {
		key  string
		want string
	}{
		{"region", "PAL\x00"},
		{"blargg", "disabled\x00"},
	}
	for _, tc := range testCases {
		if got := string(v.get(tc.key)); got != tc.want {
			t.Errorf("get(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}

	if got := v.get("unknown"); got != nil {
		t.Errorf("get(unknown) = %q, want nil", got)
	}

	v.set("blargg", "enabled")
	if !v.takeUpdate() {
		t.Fatal("expected update after set")
	}
	if got := string(v.get("blargg")); got != "enabled\x00" {
		t.Errorf("get(blargg) after set = %q", got)
	}

	if n := len(v.options()); n != 2 {
		t.Errorf("options() returned %d entries, want 2", n)
	}
}
