package tokenizer

// CharType is the coarse script class of a rune.
type CharType int

const (
	Other CharType = iota
	Hiragana
	Katakana
	Ideograph
	Latin
	Digit
)

func (c CharType) String() string {
	switch c {
	case Hiragana:
		return "hiragana"
	case Katakana:
		return "katakana"
	case Ideograph:
		return "ideograph"
	case Latin:
		return "latin"
	case Digit:
		return "digit"
	default:
		return "other"
	}
}

// Classify maps a rune to its CharType using fixed code point ranges.
// The ranges are part of the embedding contract and must not follow
// the Unicode tables of the running Go release.
func Classify(r rune) CharType {
	switch {
	case r >= 'ぁ' && r <= 'ん':
		return Hiragana
	case (r >= 'ァ' && r <= 'ヴ') || r == 'ー':
		return Katakana
	case r >= '一' && r <= '龯':
		return Ideograph
	case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		return Latin
	case (r >= '0' && r <= '9') || (r >= '０' && r <= '９'):
		return Digit
	default:
		return Other
	}
}
