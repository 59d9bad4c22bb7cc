package tokenizer

var (
	stopParticles = []string{
		"は", "が", "を", "に", "で", "と", "の", "へ", "や", "から",
		"まで", "より", "など", "ば", "も", "か", "し", "ね", "よ", "わ",
		"ぞ", "ぜ", "さ", "な", "だけ", "でも", "しか", "ほど", "くらい", "ばかり",
	}
	stopAuxiliaries = []string{
		"です", "ます", "だ", "である", "でした", "ました", "でしょう", "ましょう",
		"だろう", "であろう", "かもしれない", "かもしれません", "ない", "ません", "なかった", "ませんでした",
	}
	stopFormalNouns = []string{
		"こと", "もの", "ため", "よう", "はず", "つもり", "わけ", "ところ", "ほう",
	}
	stopConjunctions = []string{
		"また", "しかし", "そして", "それで", "だから", "つまり", "ただし", "なお", "および", "または",
	}
	stopAffixes = []string{
		"お", "ご", "御", "的", "性", "化", "者", "たち", "ら", "ども",
	}
)

// DefaultStopWords returns a fresh copy of the built-in stop word set.
func DefaultStopWords() map[string]struct{} {
	m := make(map[string]struct{}, 80)
	for _, group := range [][]string{stopParticles, stopAuxiliaries, stopFormalNouns, stopConjunctions, stopAffixes} {
		for _, w := range group {
			m[w] = struct{}{}
		}
	}
	return m
}

// edgeParticles penalise tokens that start or end with a bound particle.
var edgeParticles = []string{"は", "が", "を", "に", "で", "と", "の", "へ"}

// boundaryParticles mark an Ideograph→Hiragana word break.
var boundaryParticles = map[rune]struct{}{
	'を': {}, 'は': {}, 'が': {}, 'に': {}, 'で': {}, 'と': {}, 'の': {}, 'へ': {}, 'や': {},
}
