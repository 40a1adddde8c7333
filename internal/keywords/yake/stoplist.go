package yake

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Stoplist is the YAML stopword file format:
//
//	terms:
//	  - the
//	  - and
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file.
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, fmt.Errorf("parse stoplist %s: %w", path, err)
	}
	if len(sl.Terms) == 0 {
		return nil, fmt.Errorf("stoplist %s has no terms", path)
	}
	return &sl, nil
}

// NewFromStoplist creates an extractor using the stoplist at path,
// or the built-in list when path is empty.
func NewFromStoplist(path string) (*Extractor, error) {
	if path == "" {
		return New(), nil
	}
	sl, err := LoadStoplist(path)
	if err != nil {
		return nil, err
	}
	return New(WithStopwords(sl.Terms)), nil
}
