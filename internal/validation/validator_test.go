// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

package validation

import (
	"strings"
	"testing"
)

type sample struct {
	ContentID string `validate:"required"`
	Platform  string `validate:"required,platform"`
	Type      string `validate:"required,interaction_type"`
	Subtype   string `validate:"interaction_subtype"`
}

func TestGetValidatorSingleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("GetValidator should return the same instance")
	}
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		in         sample
		wantFields []string
	}{
		{
			name: "valid consumed clicked",
			in:   sample{ContentID: "v1", Platform: "youtube", Type: "consumed", Subtype: "clicked"},
		},
		{
			name: "valid starred no subtype",
			in:   sample{ContentID: "a1", Platform: "news", Type: "starred"},
		},
		{
			name:       "missing content id",
			in:         sample{Platform: "news", Type: "starred"},
			wantFields: []string{"ContentID"},
		},
		{
			name:       "unknown platform",
			in:         sample{ContentID: "x", Platform: "tiktok", Type: "starred"},
			wantFields: []string{"Platform"},
		},
		{
			name:       "bad type and subtype",
			in:         sample{ContentID: "x", Platform: "news", Type: "watched", Subtype: "hovered"},
			wantFields: []string{"Type", "Subtype"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&tt.in)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected errors on %v", tt.wantFields)
			}
			if len(err.Fields()) != len(tt.wantFields) {
				t.Errorf("got %d field errors, want %d: %v", len(err.Fields()), len(tt.wantFields), err)
			}
			for _, f := range tt.wantFields {
				if !err.HasField(f) {
					t.Errorf("expected failure on %s, got %v", f, err)
				}
			}
		})
	}
}

func TestTranslatedMessages(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&sample{ContentID: "x", Platform: "vimeo", Type: "starred"})
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "Platform must be one of: youtube, news") {
		t.Errorf("unexpected message %q", msg)
	}
	if !strings.Contains(msg, `"vimeo"`) {
		t.Errorf("message should quote the bad value: %q", msg)
	}
}
