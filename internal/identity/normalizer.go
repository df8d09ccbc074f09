package identity

import (
	"regexp"
	"sort"
	"strings"
)

// Club suffix phrases folded into their usual abbreviations before
// tokenizing. Word boundaries keep "soccer clubhouse" intact, and the
// phrase pass runs before single-token folds so "athletic club" becomes
// "ac" rather than "ath club".
var suffixPhrases = []struct {
	re   *regexp.Regexp
	abbr string
}{
	{regexp.MustCompile(`\bsoccer club\b`), "sc"},
	{regexp.MustCompile(`\bfootball club\b`), "fc"},
	{regexp.MustCompile(`\bfutbol club\b`), "fc"},
	{regexp.MustCompile(`\bathletic club\b`), "ac"},
	{regexp.MustCompile(`\bsports club\b`), "sc"},
	{regexp.MustCompile(`\byouth soccer\b`), "ys"},
}

var suffixTokens = map[string]string{
	"academy":     "acad",
	"association": "assoc",
	"athletic":    "ath",
	"premier":     "prem",
	"select":      "sel",
}

// Abbreviations expanded during the matcher's normalized-tier reduction.
// These are spellings that appear interchangeably on rosters and match
// pages; expanding them lets "PHX UTD" meet "Phoenix United".
var clubAbbrevs = map[string]string{
	"phx":  "phoenix",
	"tuc":  "tucson",
	"utd":  "united",
	"sprt": "sporting",
}

var genderTokens = map[string]struct{}{
	"b": {}, "g": {}, "boys": {}, "girls": {},
	"male": {}, "female": {}, "men": {}, "women": {},
}

var (
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9]+`)
	ageBracketRe = regexp.MustCompile(`^u(0?[6-9]|1[0-9])$`)
	yearGenderRe = regexp.MustCompile(`^(20)?[0-9]{2}[bg]$`)
	birthYearRe  = regexp.MustCompile(`^20[0-9]{2}$`)
)

// Normalize produces the canonical team key: lowercased, punctuation
// stripped, club suffixes folded, tokens sorted. Idempotent, and returns
// "" for blank input.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	s = nonAlnumRe.ReplaceAllString(s, " ")
	for _, f := range suffixPhrases {
		s = f.re.ReplaceAllString(s, f.abbr)
	}

	tokens := strings.Fields(s)
	for i, tok := range tokens {
		if folded, ok := suffixTokens[tok]; ok {
			tokens[i] = folded
		}
	}

	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// TeamKey is the identity used for joins across bronze, gold and
// rankings files.
func TeamKey(raw string) string {
	return Normalize(raw)
}

// ReduceForMatch applies the normalized-tier reductions on top of a
// canonical key: gender and age-designation tokens are dropped and club
// abbreviations expanded. Birth years stay; they distinguish teams
// within one club.
func ReduceForMatch(key string) string {
	if key == "" {
		return ""
	}

	tokens := strings.Fields(key)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, drop := genderTokens[tok]; drop {
			continue
		}
		if ageBracketRe.MatchString(tok) {
			continue
		}
		if yearGenderRe.MatchString(tok) {
			// 14b / 2014b style designation; keep the year part.
			year := foldBirthYear(strings.TrimRight(tok, "bg"))
			if year != "" {
				out = append(out, year)
			}
			continue
		}
		if expanded, ok := clubAbbrevs[tok]; ok {
			out = append(out, expanded)
			continue
		}
		out = append(out, foldBirthYear(tok))
	}

	sort.Strings(out)
	return strings.Join(out, " ")
}

// foldBirthYear collapses a four digit birth year to its two digit form so
// that "2014" and "14" denote the same cohort during matching.
func foldBirthYear(tok string) string {
	if birthYearRe.MatchString(tok) {
		return tok[2:]
	}
	return tok
}

// MatchTokens is the token set used for fuzzy similarity and search
// candidate overlap.
func MatchTokens(raw string) map[string]struct{} {
	reduced := ReduceForMatch(Normalize(raw))
	if reduced == "" {
		return nil
	}
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(reduced) {
		set[tok] = struct{}{}
	}
	return set
}

// TokenSimilarity is intersection-over-union on the two token sets.
// Two empty sets are identical; one empty set shares nothing.
func TokenSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
