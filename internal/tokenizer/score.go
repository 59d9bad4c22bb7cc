package tokenizer

import (
	"math"
	"strings"
)

// TokenScore ranks a candidate vocabulary term. It combines structural
// heuristics with the classic IDF of the term; it is only used to order the
// vocabulary and never feeds the embedding weights.
func (t *Tokenizer) TokenScore(token string, docFreq, totalDocs int) float64 {
	if docFreq <= 0 || totalDocs <= 0 {
		return 0
	}
	score := 1.0
	if t.dict != nil && t.dict.IsSurface(token) {
		score *= 2.0
	}

	chars := []rune(token)
	if len(chars) == 1 && Classify(chars[0]) == Ideograph {
		// a lone ideograph carries several unrelated meanings
		score *= 0.6
	}

	for _, p := range edgeParticles {
		if strings.HasPrefix(token, p) || strings.HasSuffix(token, p) {
			score *= 0.5
		}
	}

	// Latin and digits do not count towards cohesion; "第1" is a pure
	// ideograph token here.
	var classes [Digit + 1]bool
	for _, r := range chars {
		classes[Classify(r)] = true
	}
	classCount := 0
	for ct := Hiragana; ct <= Ideograph; ct++ {
		if classes[ct] {
			classCount++
		}
	}
	switch {
	case classCount == 1 && len(chars) > 1:
		score *= 1.5
		if classes[Ideograph] || classes[Katakana] {
			score *= 1.2
		}
	case classCount >= 2:
		score *= 0.7
	}

	return score * math.Log(float64(totalDocs)/float64(docFreq))
}
