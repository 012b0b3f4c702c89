// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package recommend

import (
	"reflect"
	"testing"

	"github.com/tomtom215/crossfeed/internal/models"
)

func TestExtractKeywords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		want  []string
	}{
		{"hyphenated title", "The Amazing Spider-Man Review", []string{"amazing", "spider", "man", "review"}},
		{"stop words and short runs", "How to go to the Moon in 3 days", []string{"moon", "days"}},
		{"repeats kept", "Rust rust RUST", []string{"rust", "rust", "rust"}},
		{"digits split runs", "abc123def", []string{"abc", "def"}},
		{"accented letters stay in the word", "Pokémon Legends Trailer", []string{"pokémon", "legends", "trailer"}},
		{"accented word not split", "Café Society Review", []string{"café", "society", "review"}},
		{"short runs counted in letters", "Olé Été", []string{"olé", "été"}},
		{"non-latin scripts", "Новости Дня", []string{"новости", "дня"}},
		{"empty", "", []string{}},
		{"only stop words", "the and of", []string{}},
		{
			"capped at ten",
			"alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima",
			[]string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel", "india", "juliet"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ExtractKeywords(tt.title)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractKeywords(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}

func TestDistinct(t *testing.T) {
	t.Parallel()
	got := distinct([]string{"rust", "go", "rust", "zig", "go"})
	want := []string{"rust", "go", "zig"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("distinct = %v, want %v", got, want)
	}
}

func TestDeltaFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ  models.InteractionType
		sub  models.InteractionSubtype
		want Delta
	}{
		{models.InteractionConsumed, models.SubtypeClicked, Delta{1.0, 0.5}},
		{models.InteractionConsumed, models.SubtypeMarked, Delta{0.3, 0.15}},
		{models.InteractionConsumed, models.SubtypeNone, Delta{0.3, 0.15}},
		{models.InteractionStarred, models.SubtypeNone, Delta{2.0, 1.5}},
		{models.InteractionStarred, models.SubtypeClicked, Delta{2.0, 1.5}},
		{models.InteractionDisliked, models.SubtypeNone, Delta{-2.0, -1.0}},
		{"unknown", models.SubtypeNone, Delta{}},
	}
	for _, tt := range tests {
		if got := DeltaFor(tt.typ, tt.sub); got != tt.want {
			t.Errorf("DeltaFor(%s, %q) = %+v, want %+v", tt.typ, tt.sub, got, tt.want)
		}
		if got := DeltaFor(tt.typ, tt.sub).Negate(); got != (Delta{-tt.want.Source, -tt.want.Keyword}) {
			t.Errorf("Negate(%s, %q) = %+v", tt.typ, tt.sub, got)
		}
	}

	if got := SkipDelta(); got != (Delta{-0.1, -0.05}) {
		t.Errorf("SkipDelta = %+v", got)
	}
}
