package parser

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabularyYAML []byte

// minFuzzyPatternLen keeps two-letter inputs from fuzzy matching arbitrary labels
const minFuzzyPatternLen = 3

// VocabularyEntry maps one lowercase key to a canonical location label
type VocabularyEntry struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
}

type vocabularyFile struct {
	Locations []VocabularyEntry `yaml:"locations"`
}

// Vocabulary is an ordered mapping from colloquial place names to canonical labels
type Vocabulary struct {
	entries  []VocabularyEntry
	patterns []*regexp.Regexp
	labels   []string
}

// DefaultVocabulary returns the built-in vocabulary
func DefaultVocabulary() *Vocabulary {
	v, err := ParseVocabulary(defaultVocabularyYAML)
	if err != nil {
		panic(fmt.Sprintf("parser: invalid built-in vocabulary: %v", err))
	}
	return v
}

// LoadVocabulary reads a YAML vocabulary file
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary %s: %w", path, err)
	}
	return ParseVocabulary(data)
}

// ParseVocabulary builds a vocabulary from YAML, keeping entry order
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var file vocabularyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary: %w", err)
	}
	if len(file.Locations) == 0 {
		return nil, fmt.Errorf("vocabulary has no locations")
	}

	v := &Vocabulary{}
	seenLabels := make(map[string]bool)
	for i, e := range file.Locations {
		key := strings.ToLower(strings.TrimSpace(e.Key))
		label := strings.TrimSpace(e.Label)
		if key == "" || label == "" {
			return nil, fmt.Errorf("vocabulary entry %d: key and label are required", i)
		}
		v.entries = append(v.entries, VocabularyEntry{Key: key, Label: label})
		v.patterns = append(v.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(key)+`\b`))
		if !seenLabels[label] {
			seenLabels[label] = true
			v.labels = append(v.labels, label)
		}
	}
	return v, nil
}

// Find returns the label of the first vocabulary key present in lowerText.
// Keys match on word boundaries so "la" does not fire inside "dallas".
func (v *Vocabulary) Find(lowerText string) (string, bool) {
	for i, re := range v.patterns {
		if re.MatchString(lowerText) {
			return v.entries[i].Label, true
		}
	}
	return "", false
}

// Canonicalize maps a location name produced elsewhere (e.g. by the AI delegate)
// onto a vocabulary label. Unknown names are returned trimmed and unchanged.
func (v *Vocabulary) Canonicalize(location string) string {
	trimmed := strings.TrimSpace(location)
	lower := strings.ToLower(trimmed)
	if lower == "" {
		return ""
	}

	for _, e := range v.entries {
		if e.Key == lower || strings.ToLower(e.Label) == lower {
			return e.Label
		}
	}
	if label, ok := v.Find(lower); ok {
		return label
	}

	if len(lower) >= minFuzzyPatternLen {
		lowerLabels := make([]string, len(v.labels))
		for i, l := range v.labels {
			lowerLabels[i] = strings.ToLower(l)
		}
		if matches := fuzzy.Find(lower, lowerLabels); len(matches) > 0 {
			return v.labels[matches[0].Index]
		}
	}
	return trimmed
}

// Labels returns the distinct canonical labels in vocabulary order
func (v *Vocabulary) Labels() []string {
	out := make([]string, len(v.labels))
	copy(out, v.labels)
	return out
}
