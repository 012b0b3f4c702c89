// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package recommend

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxKeywords caps how many keywords a title contributes.
const MaxKeywords = 10

const minKeywordLen = 3

var stopWords = func() map[string]struct{} {
	words := []string{
		"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by",
		"is", "are", "was", "were", "be", "been", "have", "has", "had", "do", "does", "did",
		"will", "would", "could", "should", "this", "that", "these", "those",
		"i", "you", "he", "she", "it", "we", "they", "me", "him", "her", "us", "them",
		"my", "your", "his", "its", "our", "their",
		"how", "what", "when", "where", "why", "who", "about", "than", "not", "part", "all",
		"can", "new", "first", "last", "one", "two", "three", "get", "make", "take", "come", "go", "see", "know",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// ExtractKeywords lowercases title, splits it into maximal runs of letters
// (any script), and keeps runs of at least three letters that are not stop
// words. The first MaxKeywords survivors are returned in title order.
// Repeats are kept.
//
//	ExtractKeywords("The Amazing Spider-Man Review") // [amazing spider man review]
//	ExtractKeywords("Pokémon Legends Trailer")       // [pokémon legends trailer]
func ExtractKeywords(title string) []string {
	out := make([]string, 0, MaxKeywords)
	words := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, word := range words {
		if utf8.RuneCountInString(word) < minKeywordLen {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		out = append(out, word)
		if len(out) == MaxKeywords {
			break
		}
	}
	return out
}

// distinct returns keywords with repeats removed, first occurrence first.
func distinct(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
