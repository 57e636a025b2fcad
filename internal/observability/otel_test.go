package observability

import "testing"

func TestOtelSampleRatioClampsAndDefaults(t *testing.T) {
	cases := []struct {
		name string
		val  string
		want float64
	}{
		{"unparseable falls back", "not-a-number", 0.1},
		{"explicit", "0.5", 0.5},
		{"below range clamps", "-1", 0},
		{"above range clamps", "2.5", 1},
		{"zero allowed", "0", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("OTEL_SAMPLER_RATIO", tc.val)
			if got := otelSampleRatio(); got != tc.want {
				t.Fatalf("ratio: want=%v got=%v", tc.want, got)
			}
		})
	}
}
