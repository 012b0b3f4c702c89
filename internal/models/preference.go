// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package models

import "time"

// Platform identifies one of the two content platforms.
type Platform string

const (
	PlatformYouTube Platform = "youtube"
	PlatformNews    Platform = "news"
)

// Opposite returns the other platform. Cross-platform boosts and
// correlations always pair a platform with its opposite.
func (p Platform) Opposite() Platform {
	if p == PlatformYouTube {
		return PlatformNews
	}
	return PlatformYouTube
}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	return p == PlatformYouTube || p == PlatformNews
}

// InteractionType is the kind of preference signal.
type InteractionType string

const (
	InteractionConsumed InteractionType = "consumed"
	InteractionStarred  InteractionType = "starred"
	InteractionDisliked InteractionType = "disliked"
)

// InteractionSubtype qualifies a consumed interaction.
type InteractionSubtype string

const (
	SubtypeNone    InteractionSubtype = ""
	SubtypeClicked InteractionSubtype = "clicked" // explicit open
	SubtypeMarked  InteractionSubtype = "marked"  // bulk mark-as-read
)

// Interaction is the input to RecordInteraction.
type Interaction struct {
	ContentID   string             `json:"content_id" validate:"required"`
	Platform    Platform           `json:"platform" validate:"required,platform"`
	Title       string             `json:"title" validate:"required"`
	Author      string             `json:"author" validate:"required"`
	ContentType string             `json:"content_type" validate:"required"`
	Type        InteractionType    `json:"interaction_type" validate:"required,interaction_type"`
	Subtype     InteractionSubtype `json:"interaction_subtype,omitempty" validate:"interaction_subtype"`

	// Timestamp is Unix seconds. Zero means now.
	Timestamp float64 `json:"timestamp,omitempty" validate:"gte=0"`
}

// Skip is a weak negative signal: the item was shown and passed over.
type Skip struct {
	Platform Platform `json:"platform" validate:"required,platform"`
	Title    string   `json:"title" validate:"required"`
	Author   string   `json:"author" validate:"required"`
}

// Item is a candidate to be scored. Timestamp is the publish time as a
// decimal Unix-seconds string, as delivered by the feed layer.
type Item struct {
	ContentID string `json:"id" validate:"required"`
	Author    string `json:"author" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Timestamp string `json:"timestamp" validate:"required"`
}

// ScoredItem pairs an item with its computed score.
type ScoredItem struct {
	Item  Item    `json:"item"`
	Score float64 `json:"score"`
}

// ScoreBreakdown exposes each term of a score.
type ScoreBreakdown struct {
	Source      float64 `json:"source"`
	Keyword     float64 `json:"keyword"`
	Correlation float64 `json:"correlation"`
	Recency     float64 `json:"recency"`
	Aux         float64 `json:"aux"`
	Weighted    float64 `json:"weighted"`
	Multiplier  float64 `json:"multiplier"`
	Final       float64 `json:"final"`
}

// SourceScore is one row of source_scores.
type SourceScore struct {
	SourceName         string   `json:"source_name"`
	Platform           Platform `json:"platform"`
	Score              float64  `json:"score"`
	CrossPlatformBoost float64  `json:"cross_platform_boost"`
}

// KeywordScore is one row of unified_keyword_scores.
type KeywordScore struct {
	Keyword string  `json:"keyword"`
	Score   float64 `json:"score"`
}

// CrossCorrelation is one row of cross_correlations.
type CrossCorrelation struct {
	Keyword1  string   `json:"keyword1"`
	Keyword2  string   `json:"keyword2"`
	Platform1 Platform `json:"platform1"`
	Platform2 Platform `json:"platform2"`
	Strength  float64  `json:"strength"`
}

// Stats summarises the ledger.
type Stats struct {
	TotalConsumed   int64  `json:"total_consumed"`
	TotalStarred    int64  `json:"total_starred"`
	TotalDisliked   int64  `json:"total_disliked"`
	ClickedConsumed int64  `json:"clicked_consumed"`
	MarkedConsumed  int64  `json:"marked_consumed"`
	Platform        string `json:"platform"` // platform name or "unified"

	TopSources      []RankedName `json:"top_sources"`
	TopKeywords     []RankedName `json:"top_keywords"`
	TopCorrelations []RankedName `json:"top_correlations"`
	ActiveHours     []ActiveHour `json:"active_hours"`
	LastUpdated     time.Time    `json:"last_updated"`
}

// RankedName is a (label, score) pair in a stats top-N list.
type RankedName struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// ActiveHour is an hour of day (UTC) and how many interactions fell in it.
type ActiveHour struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// PurgeResult counts rows removed by one purge run.
type PurgeResult struct {
	Interactions int64 `json:"interactions"`
	Content      int64 `json:"content"`
	Sources      int64 `json:"sources"`
	Keywords     int64 `json:"keywords"`
	Correlations int64 `json:"correlations"`
	Compacted    bool  `json:"compacted"`
}

// Total returns the number of rows removed across all tables.
func (r PurgeResult) Total() int64 {
	return r.Interactions + r.Content + r.Sources + r.Keywords + r.Correlations
}
