// Package search is the in-memory matching and ranking engine behind hotel
// suggest and full-text search. Everything here is a pure computation over an
// immutable catalog; an Engine may be shared by any number of goroutines.
package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// defaultStopWords are generic hospitality words removed from indexed text.
// Single-ideograph entries such as 宿 are left out: substring deletion would
// eat them out of place names (新宿).
var defaultStopWords = []string{
	"hotel", "inn", "guesthouse", "resort", "restaurant", "accommodation",
	"apartment", "hostel", "youth hostel", "business hotel",
	"酒店", "旅馆", "宾馆", "度假村", "饭店", "住宿", "公寓", "民宿", "青年旅社", "商务酒店",
	"ホテル", "旅館", "ビジネスホテル",
}

// TokenSet is an unordered set of normalized tokens.
type TokenSet map[string]struct{}

func (s TokenSet) Has(tok string) bool {
	_, ok := s[tok]
	return ok
}

// Sorted returns the tokens in byte order so callers can iterate deterministically.
func (s TokenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for tok := range s {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// Normalizer turns raw field or query text into canonical token variants.
type Normalizer struct {
	stopWords    []string // cleaned, longest first
	stopSet      map[string]struct{}
	placeCodes   map[string]string
	wordBoundary bool
}

type NormalizerOption func(*Normalizer)

// WithPlaceCodes adds (or overrides) entries of the place-name romanization table.
func WithPlaceCodes(codes map[string]string) NormalizerOption {
	return func(n *Normalizer) {
		for place, code := range codes {
			n.placeCodes[place] = strings.ToLower(code)
		}
	}
}

// WithStopWords replaces the default stop-word list.
func WithStopWords(words []string) NormalizerOption {
	return func(n *Normalizer) { n.setStopWords(words) }
}

// WithWordBoundaryStopWords switches stop-word removal from substring deletion
// to whole-word removal. This changes index tokens, and therefore ranking,
// compared to the default behavior.
func WithWordBoundaryStopWords(on bool) NormalizerOption {
	return func(n *Normalizer) { n.wordBoundary = on }
}

func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{placeCodes: make(map[string]string, len(defaultPlaceCodes))}
	for place, code := range defaultPlaceCodes {
		n.placeCodes[place] = code
	}
	n.setStopWords(defaultStopWords)
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Normalizer) setStopWords(words []string) {
	n.stopSet = make(map[string]struct{}, len(words))
	n.stopWords = n.stopWords[:0]
	for _, w := range words {
		c := clean(w)
		if c == "" {
			continue
		}
		if _, dup := n.stopSet[c]; dup {
			continue
		}
		n.stopSet[c] = struct{}{}
		n.stopWords = append(n.stopWords, c)
	}
	// longest first so "businesshotel" goes before "hotel"
	sort.Slice(n.stopWords, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(n.stopWords[i]), utf8.RuneCountInString(n.stopWords[j])
		if li != lj {
			return li > lj
		}
		return n.stopWords[i] < n.stopWords[j]
	})
}

// Normalize returns the cleaned text plus its romanized and Latin-case
// variants. Empty input, or input that cleans down to nothing, yields an
// empty set.
func (n *Normalizer) Normalize(text string, removeStopWords bool) TokenSet {
	out := TokenSet{}
	if text == "" {
		return out
	}

	var cleaned string
	switch {
	case removeStopWords && n.wordBoundary:
		cleaned = clean(n.dropStopWordTokens(text))
	case removeStopWords:
		cleaned = n.stripStopWords(clean(text))
	default:
		cleaned = clean(text)
	}
	if cleaned == "" {
		return out
	}

	out[cleaned] = struct{}{}
	if containsHan(cleaned) {
		if code, ok := n.placeCodes[cleaned]; ok && code != "" {
			out[code] = struct{}{}
		}
	}
	if containsLatin(cleaned) {
		lower := strings.ToLower(cleaned)
		out[lower] = struct{}{}
		out[capitalize(lower)] = struct{}{}
	}
	return out
}

// stripStopWords deletes every occurrence of every stop word, including
// occurrences in the middle of a longer word.
func (n *Normalizer) stripStopWords(s string) string {
	for _, w := range n.stopWords {
		s = strings.ReplaceAll(s, w, "")
	}
	return strings.TrimSpace(s)
}

// dropStopWordTokens removes whole words (and two-word phrases such as
// "youth hostel") that are stop words, leaving the rest of the text intact.
func (n *Normalizer) dropStopWordTokens(text string) string {
	words := strings.FieldsFunc(strings.ToLower(norm.NFKC.String(text)), func(r rune) bool { return !isWordRune(r) })
	kept := make([]string, 0, len(words))
	for i := 0; i < len(words); i++ {
		if i+1 < len(words) && n.isStopWord(words[i]+words[i+1]) {
			i++
			continue
		}
		if n.isStopWord(words[i]) {
			continue
		}
		kept = append(kept, words[i])
	}
	return strings.Join(kept, " ")
}

func (n *Normalizer) isStopWord(w string) bool {
	_, ok := n.stopSet[w]
	return ok
}

// clean folds width variants, lowercases, and keeps only letters and digits.
func clean(s string) string {
	s = strings.ToLower(norm.NFKC.String(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isWordRune(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func isWordRune(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

func containsHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

func containsLatin(s string) bool {
	for _, r := range s {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
