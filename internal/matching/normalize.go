package matching

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
)

var (
	skuSuffixExpr  = regexp.MustCompile(`\s+\([^)]+\)\s*$`)
	punctuationRe  = regexp.MustCompile(`[^\w\s-]`)
	whitespaceExpr = regexp.MustCompile(`\s+`)
)

// IsValidSKU reports whether a vendor SKU is discriminating enough to match
// on: at least 4 characters with at least one ASCII letter. Pure-numeric IDs
// ("12345") and short codes are rejected.
func IsValidSKU(sku string) bool {
	if len(sku) < 4 {
		return false
	}
	for _, r := range sku {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// NormalizeSKU uppercases and trims a SKU, stripping a trailing parenthetical
// suffix only when a space precedes it: "G296A (Short)" -> "G296A" but
// "CAPA-01(BK)" is left untouched.
func NormalizeSKU(sku string) string {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	return skuSuffixExpr.ReplaceAllString(sku, "")
}

// NormalizeTitle lowercases a title, strips punctuation except hyphens, and
// collapses whitespace runs. Colors and variant words are preserved so
// distinct variants stay distinct.
func NormalizeTitle(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	title = punctuationRe.ReplaceAllString(title, "")
	title = whitespaceExpr.ReplaceAllString(title, " ")
	return strings.TrimSpace(title)
}

// TitleID derives a stable group id from a title: "title-" plus the first 8
// hex chars of the MD5 of the normalized title. With raw set, the hash covers
// the lowercased raw title instead, used to escape collisions between
// same-store items whose normalized titles coincide.
func TitleID(title string, raw bool) string {
	text := NormalizeTitle(title)
	if raw {
		text = strings.ToLower(strings.TrimSpace(title))
	}
	sum := md5.Sum([]byte(text))
	return "title-" + hex.EncodeToString(sum[:])[:8]
}

// TokenSortRatio scores two normalized titles 0-100, insensitive to word
// order: tokens are sorted before a Levenshtein similarity is taken over the
// rejoined strings.
func TokenSortRatio(a, b string) int {
	as := sortTokens(a)
	bs := sortTokens(b)
	if as == bs {
		return 100
	}

	longest := runeLen(as)
	if l := runeLen(bs); l > longest {
		longest = l
	}
	if longest == 0 {
		return 100
	}

	dist := matchr.Levenshtein(as, bs)
	score := 100 - (100*dist+longest/2)/longest
	if score < 0 {
		score = 0
	}
	return score
}

func sortTokens(s string) string {
	tokens := strings.FieldsFunc(s, unicode.IsSpace)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func runeLen(s string) int {
	return len([]rune(s))
}
