package converting

import "strings"

var latinReplacer = strings.NewReplacer(
	"ä", "a", "ö", "o", "ü", "u", "õ", "o",
	"Ä", "A", "Ö", "O", "Ü", "U", "Õ", "O",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"É", "E", "È", "E", "Ê", "E", "Ë", "E",
	"á", "a", "à", "a", "â", "a", "ã", "a", "å", "a",
	"Á", "A", "À", "A", "Â", "A", "Ã", "A", "Å", "A",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"Í", "I", "Ì", "I", "Î", "I", "Ï", "I",
	"ó", "o", "ò", "o", "ô", "o",
	"Ó", "O", "Ò", "O", "Ô", "O",
	"ú", "u", "ù", "u", "û", "u",
	"Ú", "U", "Ù", "U", "Û", "U",
	"ñ", "n", "Ñ", "N", "ç", "c", "Ç", "C",
	"ß", "ss", "æ", "ae", "Æ", "AE", "ø", "o", "Ø", "O",
	"š", "s", "Š", "S", "ž", "z", "Ž", "Z",
)

// LatinCharacters folds common accented characters to plain ASCII. Several
// suppliers reject names outside latin-1.
func LatinCharacters(s string) string {
	return latinReplacer.Replace(s)
}
