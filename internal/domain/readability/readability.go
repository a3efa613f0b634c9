// Package readability scores text with the Flesch Reading Ease formula.
// Lower scores mean harder text; typical prose lands between 0 and 100.
package readability

import (
	"regexp"
	"strings"
	"unicode"
)

// Formula coefficients.
const (
	base            = 206.835
	sentenceWeight  = 1.015
	syllablesWeight = 84.6
)

// Neutral is the score of text without words. Callers treat it as "no
// evidence either way" rather than as hard or easy text.
const Neutral = 50.0

// Scorer maps text to a reading-ease score.
type Scorer interface {
	Score(text string) float64
}

// Flesch implements Scorer.
type Flesch struct{}

// Score returns the Flesch Reading Ease of text.
func (Flesch) Score(text string) float64 {
	return ReadingEase(text)
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// ReadingEase returns the Flesch Reading Ease of text. Text without words
// scores Neutral.
func ReadingEase(text string) float64 {
	words := Words(text)
	if len(words) == 0 {
		return Neutral
	}
	syllables := 0
	for _, w := range words {
		syllables += Syllables(w)
	}
	sentences := Sentences(text)
	wps := float64(len(words)) / float64(sentences)
	spw := float64(syllables) / float64(len(words))
	return base - sentenceWeight*wps - syllablesWeight*spw
}

// Words returns the alphanumeric words of text with punctuation stripped.
func Words(text string) []string {
	fields := strings.Fields(text)
	out := fields[:0]
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// Sentences counts sentences containing at least one word, minimum 1.
func Sentences(text string) int {
	n := 0
	for _, part := range sentenceSplit.Split(text, -1) {
		if len(Words(part)) > 0 {
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

// Syllables estimates the syllable count of a single English word by
// counting vowel groups, dropping a silent trailing e.
func Syllables(word string) int {
	w := strings.ToLower(word)
	letters := make([]rune, 0, len(w))
	for _, r := range w {
		if unicode.IsLetter(r) {
			letters = append(letters, r)
		}
	}
	if len(letters) == 0 {
		return 1
	}
	if len(letters) <= 3 {
		return 1
	}

	count := 0
	prevVowel := false
	for _, r := range letters {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	n := len(letters)
	if letters[n-1] == 'e' && !(letters[n-2] == 'l' && !isVowel(letters[n-3])) && count > 1 {
		count--
	}
	if count < 1 {
		return 1
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
