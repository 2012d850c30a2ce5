package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"hotel_search/internal/domain"
)

// Index maps normalized tokens to the catalog positions whose indexed fields
// produced them. It is built once and never mutated.
type Index struct {
	buckets map[string][]int
	tokens  []string // sorted keys of buckets
}

// indexedFields lists the record fields that feed the inverted index.
func indexedFields(h *domain.HotelRecord) [6]string {
	return [6]string{h.NameLocal, h.NameAlt, h.NameThird, h.CityLocal, h.CityAlt, h.Region}
}

// BuildIndex normalizes every indexed field of every record (with stop-word
// removal) and files the record position under each resulting token. A
// position may appear more than once in a bucket when several fields yield
// the same token.
func BuildIndex(records []domain.HotelRecord, n *Normalizer) *Index {
	ix := &Index{buckets: make(map[string][]int)}
	for pos := range records {
		for _, field := range indexedFields(&records[pos]) {
			if field == "" {
				continue
			}
			for _, tok := range n.Normalize(field, true).Sorted() {
				ix.buckets[tok] = append(ix.buckets[tok], pos)
			}
		}
	}
	ix.tokens = make([]string, 0, len(ix.buckets))
	for tok := range ix.buckets {
		ix.tokens = append(ix.tokens, tok)
	}
	sort.Strings(ix.tokens)
	return ix
}

func (ix *Index) Len() int { return len(ix.tokens) }

// Bucket returns the record positions filed under tok. The slice is shared; do not modify it.
func (ix *Index) Bucket(tok string) []int { return ix.buckets[tok] }

// PrefixMatches returns, in byte order, every indexed token that either starts
// with v or is itself a prefix of v.
func (ix *Index) PrefixMatches(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for i := sort.SearchStrings(ix.tokens, v); i < len(ix.tokens) && strings.HasPrefix(ix.tokens[i], v); i++ {
		out = append(out, ix.tokens[i])
	}
	// proper prefixes of v, cut on rune boundaries
	for i := 0; i < len(v); {
		_, size := utf8.DecodeRuneInString(v[i:])
		i += size
		if i >= len(v) {
			break
		}
		if _, ok := ix.buckets[v[:i]]; ok {
			out = append(out, v[:i])
		}
	}
	sort.Strings(out)
	return out
}
