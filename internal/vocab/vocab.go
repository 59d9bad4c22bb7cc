// Package vocab turns a tokenized corpus into a ranked, dense term index.
package vocab

import (
	"sort"

	"segembed/internal/tokenizer"
)

const (
	smallCorpusFloor  = 1000
	mediumCorpusFloor = 5000
	largeCorpusFloor  = 10000
	termsPerDocument  = 100
)

// Vocabulary is an immutable injective mapping term -> [0, Len()).
type Vocabulary struct {
	terms []string
	index map[string]int
}

// FromTerms builds a vocabulary whose indices follow the order of terms.
// Duplicate terms keep their first index.
func FromTerms(terms []string) *Vocabulary {
	v := &Vocabulary{
		terms: make([]string, 0, len(terms)),
		index: make(map[string]int, len(terms)),
	}
	for _, t := range terms {
		if _, dup := v.index[t]; dup {
			continue
		}
		v.index[t] = len(v.terms)
		v.terms = append(v.terms, t)
	}
	return v
}

// Len returns the number of terms; a nil vocabulary is empty.
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.terms)
}

// Index returns the dense index of term.
func (v *Vocabulary) Index(term string) (int, bool) {
	if v == nil {
		return 0, false
	}
	i, ok := v.index[term]
	return i, ok
}

// Term returns the term stored at index i.
func (v *Vocabulary) Term(i int) string { return v.terms[i] }

// Terms returns a copy of the terms in index order.
func (v *Vocabulary) Terms() []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v.terms...)
}

// DynamicCap bounds the vocabulary size by corpus size.
func DynamicCap(docCount, maxVocab int) int {
	size := docCount * termsPerDocument
	switch {
	case docCount < 10:
		size = max(size, smallCorpusFloor)
	case docCount < 100:
		size = max(size, mediumCorpusFloor)
	default:
		size = max(size, largeCorpusFloor)
	}
	return min(size, maxVocab)
}

type scored struct {
	term  string
	score float64
}

// Build tokenizes documents, filters terms by document frequency, ranks the
// survivors by TokenScore and keeps the top DynamicCap terms. Ties are broken
// by term so identical corpora always yield identical vocabularies.
func Build(tok *tokenizer.Tokenizer, documents []string) *Vocabulary {
	opts := tok.Options()
	df := make(map[string]int)
	for _, doc := range documents {
		// Tokenize already returns a set
		for _, t := range tok.Tokenize(doc) {
			df[t]++
		}
	}

	total := len(documents)
	maxDocs := max(int(float64(total)*opts.MaxDocFreqRatio), 1)

	candidates := make([]scored, 0, len(df))
	for term, freq := range df {
		if freq < opts.MinDocFreq || freq > maxDocs {
			continue
		}
		candidates = append(candidates, scored{term: term, score: tok.TokenScore(term, freq, total)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].term < candidates[j].term
	})

	if limit := DynamicCap(total, opts.MaxVocabSize); len(candidates) > limit {
		candidates = candidates[:limit]
	}
	terms := make([]string, len(candidates))
	for i, c := range candidates {
		terms[i] = c.term
	}
	return FromTerms(terms)
}
