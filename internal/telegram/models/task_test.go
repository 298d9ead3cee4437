package models

import "testing"

func TestForwardTaskAllowsMediaType(t *testing.T) {
	tests := []struct {
		name     string
		types    []string
		category string
		expected bool
	}{
		{name: "empty set denies text", types: nil, category: MediaTypeText, expected: false},
		{name: "wildcard allows anything", types: []string{MediaTypeAll}, category: MediaTypeVideo, expected: true},
		{name: "wildcard allows other", types: []string{MediaTypeAll}, category: MediaTypeOther, expected: true},
		{name: "listed type allowed", types: []string{MediaTypePhoto, MediaTypeVideo}, category: MediaTypeVideo, expected: true},
		{name: "unlisted type denied", types: []string{MediaTypePhoto}, category: MediaTypeVideo, expected: false},
		{name: "other denied by restricted set", types: []string{MediaTypePhoto}, category: MediaTypeOther, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &ForwardTask{MediaTypes: tt.types}
			if got := task.AllowsMediaType(tt.category); got != tt.expected {
				t.Fatalf("AllowsMediaType(%q) = %v, want %v", tt.category, got, tt.expected)
			}
		})
	}
}
