package classify

import "testing"

func TestBestCategoryFromVendorCategory(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw, title, want string
	}{
		{"Gel Blaster", "Some Product", "Blasters"},
		{"gel blasters", "Some Product", "Blasters"},
		{"MAGAZINES &AMP; DRUMS", "Drum", "Magazines"},
		{"Snipers & DMR", "Long Rifle", "Snipers"},
	}
	for _, tc := range cases {
		if got := BestCategory(tc.raw, tc.title, nil); got != tc.want {
			t.Fatalf("BestCategory(%q, %q) = %q, want %q", tc.raw, tc.title, got, tc.want)
		}
	}
}

func TestBestCategoryMarketingNoiseFallsBackToTitle(t *testing.T) {
	t.Parallel()

	if got := BestCategory("New Arrivals", "M4A1 Gel Blaster Rifle", nil); got != "Rifles" {
		t.Fatalf("expected title keywords to decide, got %q", got)
	}
	if got := BestCategory("Sale", "7-8mm Gel Ball 10000 Pack", nil); got != "Gel Balls" {
		t.Fatalf("expected Gel Balls, got %q", got)
	}
}

func TestBestCategoryUnknownVendorCategoryUsesKeywords(t *testing.T) {
	t.Parallel()

	// Unknown raw category that itself contains a keyword.
	if got := BestCategory("Sniper Platform Builds", "Mystery Product", nil); got != "Snipers" {
		t.Fatalf("expected keyword match on raw category, got %q", got)
	}
}

func TestBestCategoryTagAndExtraFallback(t *testing.T) {
	t.Parallel()

	if got := BestCategory("", "Mystery Product", []string{"gearbox"}); got != "Gearboxes" {
		t.Fatalf("expected tag fallback, got %q", got)
	}
	if got := BestCategory("", "Mystery Product", nil, "metal hop up chamber for m4"); got != "Hopups" {
		t.Fatalf("expected extra-text fallback, got %q", got)
	}
	if got := BestCategory("", "Mystery Product", nil); got != Uncategorized {
		t.Fatalf("expected Uncategorized, got %q", got)
	}
}

func TestExclusionForTitle(t *testing.T) {
	t.Parallel()

	excl := ExclusionFor("Pokemon Booster Box", "", nil)
	if excl == nil {
		t.Fatalf("trading card listing should be excluded")
	}
	if excl.Type != "title" || excl.Category != "trading_cards" {
		t.Fatalf("unexpected exclusion: %+v", excl)
	}
}

func TestExclusionForCategoryAndTags(t *testing.T) {
	t.Parallel()

	excl := ExclusionFor("Generic Buggy", "RC Cars", nil)
	if excl == nil || excl.Type != "category" || excl.Category != "rc" {
		t.Fatalf("expected category exclusion, got %+v", excl)
	}

	excl = ExclusionFor("Generic Thing", "", []string{"nerf"})
	if excl == nil || excl.Type != "tag" || excl.Category != "dart_blasters" {
		t.Fatalf("expected tag exclusion, got %+v", excl)
	}
}

func TestExclusionForKeepsBlasterGear(t *testing.T) {
	t.Parallel()

	if excl := ExclusionFor("M4A1 Gel Blaster Rifle", "Rifles", []string{"gel blaster"}); excl != nil {
		t.Fatalf("gel blaster listing should not be excluded: %+v", excl)
	}
}
