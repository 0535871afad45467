package nlu

import (
	"regexp"
	"strconv"
	"strings"
)

// IsConfirm reports whether text agrees to a pending action: an exact
// confirmation phrase, or one followed by at most two words ("yes please").
func (c *Classifier) IsConfirm(text string) bool {
	norm := normalize(text)
	if c.confirm[norm] {
		return true
	}
	words := strings.Fields(norm)
	return len(words) > 1 && len(words) <= 3 && len(words[0]) > 1 && c.confirm[words[0]] && !c.cancel[norm]
}

// IsCancel matches whole phrases only; "no homework tonight" is not a
// cancellation.
func (c *Classifier) IsCancel(text string) bool {
	return c.cancel[normalize(text)]
}

func (c *Classifier) HasOverride(text string) bool {
	norm := " " + normalize(text) + " "
	for _, p := range c.override {
		if strings.Contains(norm, " "+p+" ") {
			return true
		}
	}
	return false
}

// StripOverride removes override phrases, and the separator before each,
// from text. Everything else keeps its original casing.
func (c *Classifier) StripOverride(text string) string {
	out := prepare(text)
	for _, re := range c.overrideRe {
		out = re.ReplaceAllString(out, " ")
	}
	return strings.Trim(strings.Join(strings.Fields(out), " "), " ,;:-")
}

// overridePattern matches a normalized phrase case-insensitively, with an
// optional joining "and"/"but" and surrounding punctuation.
func overridePattern(phrase string) *regexp.Regexp {
	words := strings.Fields(phrase)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)(?:^|[\s,;:.!?-]+)(?:(?:and|but)\s+)?` +
		strings.Join(words, `\s+`) + `\b[\s.!?]*`)
}

// PronounReference reports whether a recipient refers back to the last
// student instead of naming one.
func (c *Classifier) PronounReference(recipient string) bool {
	return c.pronouns[normalize(recipient)]
}

var ordinals = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
}

var choiceFiller = map[string]bool{
	"the": true, "number": true, "no": true, "option": true, "choice": true,
	"please": true, "pick": true, "choose": true, "i": true, "want": true, "mean": true,
}

// ParseChoice extracts a 1-based enumeration pick ("2", "#2", "the second
// one", "last") from text and returns it 0-based. ok is false when text is
// not a pick within [0, n).
func ParseChoice(text string, n int) (int, bool) {
	words := strings.Fields(strings.NewReplacer("#", " ", ".", " ", ")", " ").Replace(strings.ToLower(prepare(text))))
	if len(words) == 0 || len(words) > 5 || n <= 0 {
		return 0, false
	}
	pick := 0
	for i, w := range words {
		switch {
		case w == "last":
			pick = n
		case ordinals[w] > 0:
			// "one" is filler in "the second one" but a pick on its own.
			if w == "one" && (pick != 0 || i > 0) {
				continue
			}
			pick = ordinals[w]
		default:
			if v, err := strconv.Atoi(strings.TrimRight(w, "stndrh")); err == nil && digitsPrefix(w) {
				pick = v
			} else if !choiceFiller[w] {
				return 0, false
			}
		}
	}
	if pick < 1 || pick > n {
		return 0, false
	}
	return pick - 1, true
}

func digitsPrefix(w string) bool {
	return w != "" && w[0] >= '0' && w[0] <= '9'
}
