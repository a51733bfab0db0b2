package classify

import (
	"sort"
	"strings"
)

// Exclusion explains why a listing was filtered out, for the stats report.
type Exclusion struct {
	Type     string `json:"reason"`         // "title", "category", or "tag"
	Keyword  string `json:"keyword"`        // the keyword that fired
	Category string `json:"filterCategory"` // which exclusion bucket it belongs to
}

// excludedTitleKeywords marks listings that are not gel-blaster goods at all.
// Keyed by exclusion bucket; hobby stores mix trading cards, RC gear, and
// model kits into the same catalogs.
var excludedTitleKeywords = map[string][]string{
	"trading_cards": {
		"magic the gathering", "pokemon", "pokémon", "yu-gi-oh", "yugioh",
		"trading card", "booster", "tcg", "lorcana",
	},
	"collectibles": {
		"funko", "pop vinyl", "anime figure", "action figure", "figurine",
		"collectible figure", "mcfarlane",
	},
	"general_toys": {
		"plush", "keychain", "mystery box", "beyblade", "building set", "blind bag",
	},
	"rc_parts_and_brands": {
		"traxxas", "du-bro", "rc car", "rc plane", "rc tank", "quadcopter",
		"servo extension", "servo horn", "1/10 scale", "1/8 scale", "hobbywing",
		"wltoys", "slipper clutch",
	},
	"model_kits": {
		"model kit", "tamiya 1/", "lacquer spray", "model cement", "italeri", "epoxy",
	},
	"dart_foam_blasters": {
		"foam dart", "dart blaster", "nerf dart", "nerf rival", "nerf gun", "soft dart",
	},
	"cosplay_costumes": {
		"lightsaber", "foam sword", "cosplay helmet", "led mask", "cowboy holster",
	},
	"puzzles_games": {
		"jigsaw puzzle", "chess set", "1000 piece", "monopoly", "board game",
	},
	"knives": {
		"pocket knife", "folding knife", "kitchen knife", "chef knife",
	},
	"gun_safes": {
		"gun safe", "gun cabinet", "key safe",
	},
	"shipping_services": {
		"flat rate shipping", "shipping fee", "service fee", "postage fee", "gift card",
	},
	"clothing": {
		"t-shirt", "polyester cap", "childrens shorts",
	},
	"warhammer": {
		"warhammer", "age of sigmar",
	},
}

var excludedCategoryKeywords = map[string][]string{
	"trading_cards":  {"trading cards", "tcg", "card games"},
	"collectibles":   {"collectibles", "funko", "pop vinyl", "figures"},
	"rc":             {"rc cars", "rc planes", "rc tanks", "radio control", "remote control"},
	"model_kits":     {"model kits", "plastic models", "paints"},
	"dart_blasters":  {"nerf", "foam dart", "dart blasters"},
	"clothing":       {"apparel", "clothing", "t-shirts"},
	"gift_cards":     {"gift card", "gift cards", "gift vouchers"},
	"board_games":    {"board games", "puzzles"},
}

var excludedTagKeywords = map[string][]string{
	"trading_cards": {"tcg", "pokemon", "trading card"},
	"collectibles":  {"funko", "collectible"},
	"rc":            {"rc", "radio control"},
	"dart_blasters": {"nerf", "foam dart"},
	"gift_cards":    {"gift card"},
}

// ExclusionFor reports why a listing should be dropped, or nil to keep it.
// Title keywords are checked first, then the vendor category, then tags,
// mirroring the reporting granularity of the stats output.
func ExclusionFor(title, category string, tags []string) *Exclusion {
	lowTitle := strings.ToLower(title)
	for _, bucket := range sortedBuckets(excludedTitleKeywords) {
		for _, kw := range excludedTitleKeywords[bucket] {
			if strings.Contains(lowTitle, kw) {
				return &Exclusion{Type: "title", Keyword: kw, Category: bucket}
			}
		}
	}

	lowCategory := strings.ToLower(category)
	if lowCategory != "" {
		for _, bucket := range sortedBuckets(excludedCategoryKeywords) {
			for _, kw := range excludedCategoryKeywords[bucket] {
				if strings.Contains(lowCategory, kw) {
					return &Exclusion{Type: "category", Keyword: kw, Category: bucket}
				}
			}
		}
	}

	for _, tag := range tags {
		lowTag := strings.ToLower(tag)
		for _, bucket := range sortedBuckets(excludedTagKeywords) {
			for _, kw := range excludedTagKeywords[bucket] {
				if lowTag == kw {
					return &Exclusion{Type: "tag", Keyword: kw, Category: bucket}
				}
			}
		}
	}

	return nil
}

func sortedBuckets(m map[string][]string) []string {
	buckets := make([]string, 0, len(m))
	for b := range m {
		buckets = append(buckets, b)
	}
	sort.Strings(buckets)
	return buckets
}
