// Package word decides if swiped letters form real words.
package word

import (
	"bufio"
	_ "embed" // for the default lexicon
	"errors"
	"io"
	"strings"
	"unicode"
)

// Validator is a fixed set of lower case words.
type Validator map[string]struct{}

// defaultWords is a small list of common words, separated by whitespace.
//
//go:embed lexicon.txt
var defaultWords string

// NewValidator consumes the lower case words in the reader.
// Words with upper case letters or symbols are skipped.
func NewValidator(r io.Reader) (Validator, error) {
	if r == nil {
		return nil, errors.New("reader required to initialize word validator from")
	}
	v := make(Validator)
	scanner := bufio.NewScanner(r)
	scanner.Split(scanLowerWords)
	for scanner.Scan() {
		v[scanner.Text()] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return v, nil
}

// DefaultWords reads the built-in list of common words.
func DefaultWords() io.Reader {
	return strings.NewReader(defaultWords)
}

// Validate determines whether or not the word is in the set.
// Words are converted to lowercase before checking.
func (v Validator) Validate(word string) bool {
	_, ok := v[strings.ToLower(word)]
	return ok
}

// scanLowerWords is a bufio.SplitFunc that returns the next only-lowercase word.
// Derived from bufio.ScanWords, but simplified to only handle ASCII.
func scanLowerWords(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start, end := 0, 0
	skipUntilSpace := false
	for end < len(data) {
		r := rune(data[end])
		end++
		switch {
		case unicode.IsSpace(r):
			if !skipUntilSpace && end-start > 1 {
				return end, data[start : end-1], nil
			}
			start = end
			skipUntilSpace = false
		case !unicode.IsLower(r) && !skipUntilSpace: // uppercase/symbol
			skipUntilSpace = true
		}
	}
	if atEOF && len(data) > start {
		if skipUntilSpace {
			return len(data), nil, nil
		}
		return len(data), data[start:], nil
	}
	return start, nil, nil
}
