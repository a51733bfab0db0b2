package matching

import (
	"strings"
	"testing"
)

func TestIsValidSKU(t *testing.T) {
	t.Parallel()

	cases := []struct {
		sku   string
		valid bool
	}{
		{"WX-100", true},
		{"G296A", true},
		{"12345", false}, // no letter
		{"AB1", false},   // too short
		{"", false},
		{"abcd", true},
	}
	for _, tc := range cases {
		if got := IsValidSKU(tc.sku); got != tc.valid {
			t.Fatalf("IsValidSKU(%q) = %v, want %v", tc.sku, got, tc.valid)
		}
	}
}

func TestNormalizeSKU(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"G296A (Short)", "G296A"},
		{"CAPA-01(BK)", "CAPA-01(BK)"}, // no space before the parenthetical
		{" wx-100 ", "WX-100"},
		{"AKM-47 (Gen 2) ", "AKM-47"},
	}
	for _, tc := range cases {
		if got := NormalizeSKU(tc.in); got != tc.want {
			t.Fatalf("NormalizeSKU(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeTitle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"  Widget X  ", "widget x"},
		{"AK-47 Gel Blaster!", "ak-47 gel blaster"},
		{"Foo,   Bar (v2)", "foo bar v2"},
		{"Blaster - Red", "blaster - red"},
	}
	for _, tc := range cases {
		if got := NormalizeTitle(tc.in); got != tc.want {
			t.Fatalf("NormalizeTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTitleID(t *testing.T) {
	t.Parallel()

	id := TitleID("Widget X", false)
	if !strings.HasPrefix(id, "title-") || len(id) != len("title-")+8 {
		t.Fatalf("unexpected title id format: %q", id)
	}

	// Same normalized form, same id.
	if other := TitleID("  widget   x!  ", false); other != id {
		t.Fatalf("normalized title ids differ: %q vs %q", id, other)
	}

	// Raw hashing distinguishes titles that normalize identically.
	a := TitleID("widget x!", true)
	b := TitleID("widget x?", true)
	if a == b {
		t.Fatalf("raw title ids should differ, both %q", a)
	}
}

func TestTokenSortRatio(t *testing.T) {
	t.Parallel()

	if got := TokenSortRatio("gel blaster srb kit", "srb kit gel blaster"); got != 100 {
		t.Fatalf("reordered tokens should score 100, got %d", got)
	}
	if got := TokenSortRatio("", ""); got != 100 {
		t.Fatalf("empty titles should score 100, got %d", got)
	}

	near := TokenSortRatio("alpha king ak-47 gel blaster", "alpha king ak47 gel blaster")
	if near < 90 {
		t.Fatalf("near-identical titles should clear the cutoff, got %d", near)
	}

	far := TokenSortRatio("m4a1 carbine rifle", "speed loader bottle")
	if far >= 90 {
		t.Fatalf("unrelated titles should score low, got %d", far)
	}
}
