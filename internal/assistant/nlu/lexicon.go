package nlu

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/educator-assistant-backend/internal/assistant"
)

//go:embed lexicon.yaml
var defaultLexicon []byte

type PatternSpec struct {
	Regex string            `yaml:"regex"`
	Set   map[string]string `yaml:"set"`
}

type IntentSpec struct {
	Name     string        `yaml:"name"`
	Patterns []PatternSpec `yaml:"patterns"`
	Keywords []string      `yaml:"keywords"`
}

// Lexicon is the declarative vocabulary of the classifier.
type Lexicon struct {
	Intents  []IntentSpec `yaml:"intents"`
	Confirm  []string     `yaml:"confirm"`
	Cancel   []string     `yaml:"cancel"`
	Override []string     `yaml:"override"`
	Pronouns []string     `yaml:"pronouns"`
}

// LoadLexicon reads a lexicon from path, or the embedded default when path
// is empty.
func LoadLexicon(path string) (*Lexicon, error) {
	raw := defaultLexicon
	if p := strings.TrimSpace(path); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read lexicon %s: %w", p, err)
		}
		raw = b
	}
	return ParseLexicon(raw)
}

func ParseLexicon(raw []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(raw, &lex); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	if len(lex.Intents) == 0 {
		return nil, fmt.Errorf("lexicon has no intents")
	}
	for _, in := range lex.Intents {
		if assistant.ParseIntent(in.Name) != assistant.Intent(in.Name) {
			return nil, fmt.Errorf("lexicon: unknown intent %q", in.Name)
		}
	}
	return &lex, nil
}

// DefaultLexicon returns the embedded lexicon. It panics if the embedded
// document is malformed.
func DefaultLexicon() *Lexicon {
	lex, err := ParseLexicon(defaultLexicon)
	if err != nil {
		panic(err)
	}
	return lex
}

type compiledPattern struct {
	re  *regexp.Regexp
	set map[string]string
}

type compiledIntent struct {
	intent   assistant.Intent
	patterns []compiledPattern
	keywords []string
}

func compile(lex *Lexicon) ([]compiledIntent, error) {
	out := make([]compiledIntent, 0, len(lex.Intents))
	for _, spec := range lex.Intents {
		ci := compiledIntent{intent: assistant.Intent(spec.Name)}
		for i, p := range spec.Patterns {
			re, err := regexp.Compile("(?i)" + p.Regex)
			if err != nil {
				return nil, fmt.Errorf("intent %s pattern %d: %w", spec.Name, i, err)
			}
			ci.patterns = append(ci.patterns, compiledPattern{re: re, set: p.Set})
		}
		for _, k := range spec.Keywords {
			if k = normalize(k); k != "" {
				ci.keywords = append(ci.keywords, k)
			}
		}
		out = append(out, ci)
	}
	return out, nil
}
