package yake

import (
	"strings"
	"unicode"
)

// token is one word occurrence with its original spelling.
type token struct {
	raw   string
	lower string
}

// sentences splits text into sentences of tokens. Sentence boundaries are
// newlines and '.', '!' or '?' followed by whitespace or end of text.
func sentences(text string) [][]token {
	var out [][]token
	var cur []token
	var word strings.Builder

	endWord := func() {
		if word.Len() == 0 {
			return
		}
		raw := strings.Trim(word.String(), "-'")
		word.Reset()
		if raw != "" {
			cur = append(cur, token{raw: raw, lower: strings.ToLower(raw)})
		}
	}
	endSentence := func() {
		endWord()
		if len(cur) > 0 {
			out = append(out, cur)
			cur = nil
		}
	}

	runes := []rune(text)
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '\'':
			word.WriteRune(r)
		case r == '\n':
			endSentence()
		case r == '.' || r == '!' || r == '?':
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
				endSentence()
			} else {
				endWord()
			}
		default:
			endWord()
		}
	}
	endSentence()
	return out
}

// candidate reports whether a lowercased token may become a keyword.
func (e *Extractor) candidate(lower string) bool {
	if len([]rune(lower)) <= 1 || numericOnly(lower) {
		return false
	}
	_, stop := e.stopwords[lower]
	return !stop
}

func numericOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsNumber(r) && r != '-' {
			return false
		}
	}
	return true
}

func isAcronym(s string) bool {
	if len([]rune(s)) < 2 {
		return false
	}
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters > 0
}

func isCapitalised(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
