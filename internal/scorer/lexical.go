package scorer

import (
	"context"
	"regexp"
	"strings"
)

// Lexical is a regex-based scorer used when no external scoring API is
// configured. It is deterministic, which also makes it the scorer of choice
// in tests.
type Lexical struct {
	toxicWords      []*regexp.Regexp
	promoPhrases    []*regexp.Regexp
	urlPattern      *regexp.Regexp
	emailPattern    *regexp.Regexp
	phonePattern    *regexp.Regexp
	repeatedPattern *regexp.Regexp
	allCapsPattern  *regexp.Regexp
	hindiWords      map[string]bool
	professionWords map[string]bool
}

var toxicTerms = []string{
	"idiot", "stupid", "moron", "loser", "trash", "pathetic",
	"hate you", "shut up", "kill yourself", "worthless",
	"scammer", "fraud", "cheat",
}

var promoTerms = []string{
	"discount", "offer", "sale", "buy now", "visit now", "order now",
	"limited", "free", "click here", "subscribe", "winner", "prize",
	"earn money", "cash back", "lowest price", "best deal", "dm me",
	"whatsapp me", "promo code",
}

// Romanized Hindi words common in Hinglish posts. Two or more hits marks the
// text bilingual and dampens spam/toxicity via the cultural adjustment.
var hindiTerms = []string{
	"hai", "nahi", "kya", "acha", "accha", "bahut", "bohot", "yaar",
	"ji", "kutta", "kutte", "pyaar", "dost", "mera", "meri", "wala",
	"karo", "chahiye", "theek", "bilkul",
}

// Professional vocabulary (veterinary/medical register). Lowers the effective
// spam weight for advisory posts that legitimately mention products.
var professionTerms = []string{
	"vaccination", "vaccine", "deworming", "neuter", "spay", "diagnosis",
	"prescription", "dosage", "veterinary", "veterinarian", "symptoms",
	"treatment", "clinic", "checkup",
}

func NewLexical() *Lexical {
	l := &Lexical{
		urlPattern:      regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`),
		emailPattern:    regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`),
		phonePattern:    regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`),
		repeatedPattern: regexp.MustCompile(`(.)\1{4,}`),
		allCapsPattern:  regexp.MustCompile(`[A-Z]{5,}`),
		hindiWords:      make(map[string]bool, len(hindiTerms)),
		professionWords: make(map[string]bool, len(professionTerms)),
	}
	for _, w := range toxicTerms {
		l.toxicWords = append(l.toxicWords, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(w)+`\b`))
	}
	for _, p := range promoTerms {
		l.promoPhrases = append(l.promoPhrases, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(p)+`\b`))
	}
	for _, w := range hindiTerms {
		l.hindiWords[w] = true
	}
	for _, w := range professionTerms {
		l.professionWords[w] = true
	}
	return l
}

func (l *Lexical) Score(_ context.Context, _ string, text string) (*Result, error) {
	result := &Result{Quality: 0.5, CulturalAdjustment: 1.0}
	if strings.TrimSpace(text) == "" {
		result.Quality = 0
		return result, nil
	}

	promoHits := 0
	for _, re := range l.promoPhrases {
		if re.MatchString(text) {
			promoHits++
		}
	}
	spam := 0.3 * float64(promoHits)
	if l.urlPattern.MatchString(text) {
		spam += 0.25
	}
	if l.emailPattern.MatchString(text) || l.phonePattern.MatchString(text) {
		spam += 0.25
	}
	if l.repeatedPattern.MatchString(text) {
		spam += 0.2
	}
	if strings.Count(text, "!") >= 3 {
		spam += 0.15
	}
	if spam > 0.95 {
		spam = 0.95
	}
	result.Spam = spam
	result.Flags.Promotional = promoHits >= 2

	toxicHits := 0
	for _, re := range l.toxicWords {
		if re.MatchString(text) {
			toxicHits++
		}
	}
	toxicity := 0.4 * float64(toxicHits)
	if len(l.allCapsPattern.FindAllString(text, -1)) > 2 {
		toxicity += 0.1
	}
	if toxicity > 0.95 {
		toxicity = 0.95
	}
	result.Toxicity = toxicity

	words := strings.Fields(strings.ToLower(strings.Map(stripPunct, text)))
	hindiHits := 0
	professionHits := 0
	for _, w := range words {
		if l.hindiWords[w] {
			hindiHits++
		}
		if l.professionWords[w] {
			professionHits++
		}
	}
	if hindiHits >= 2 {
		result.Flags.Bilingual = true
		result.CulturalAdjustment = 0.75
	}
	result.Flags.Professional = professionHits >= 1

	// Longer, calmer text reads as higher quality.
	switch {
	case len(words) >= 40:
		result.Quality = 0.8
	case len(words) >= 15:
		result.Quality = 0.65
	}
	if result.Spam >= 0.6 || result.Toxicity >= 0.6 {
		result.Quality *= 0.5
	}

	result.Clamp()
	return result, nil
}

func stripPunct(r rune) rune {
	switch r {
	case '!', '?', '.', ',', ';', ':', '"', '\'', '(', ')':
		return ' '
	}
	return r
}
