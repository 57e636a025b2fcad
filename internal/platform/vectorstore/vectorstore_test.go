package vectorstore

import "testing"

func f64ptr(v float64) *float64 { return &v }

func TestRelevancePrefersCertainty(t *testing.T) {
	r := SearchResult{Certainty: f64ptr(0.8), Distance: f64ptr(1.9)}
	if got := r.Relevance(); got != 0.8 {
		t.Fatalf("relevance: want=0.8 got=%v", got)
	}
}

func TestRelevanceConvertsCosineDistance(t *testing.T) {
	cases := []struct {
		distance float64
		want     float64
	}{
		{0, 1},
		{1, 0.5},
		{2, 0},
		{2.5, 0},
		{-0.5, 1},
	}
	for _, tc := range cases {
		r := SearchResult{Distance: f64ptr(tc.distance)}
		if got := r.Relevance(); got != tc.want {
			t.Fatalf("relevance for distance=%v: want=%v got=%v", tc.distance, tc.want, got)
		}
	}
}

func TestRelevanceAbsentSignals(t *testing.T) {
	r := SearchResult{}
	if got := r.Relevance(); got != 0 {
		t.Fatalf("relevance with no signals: want=0 got=%v", got)
	}
}

func TestRelevanceClampsCertainty(t *testing.T) {
	r := SearchResult{Certainty: f64ptr(1.3)}
	if got := r.Relevance(); got != 1 {
		t.Fatalf("relevance: want=1 got=%v", got)
	}
}
