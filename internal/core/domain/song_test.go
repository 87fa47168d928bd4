package domain

import (
	"errors"
	"math"
	"testing"
)

func TestFeatureVectorFromValues(t *testing.T) {
	values := []float64{0.1, 0.2, 3, -5.5, 1, 0.05, 0.3, 0.001, 0.12, 0.9, 128, 210000}
	v, err := FeatureVectorFromValues(values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := v.Values()
	for i := range values {
		if got[i] != values[i] {
			t.Fatalf("%s: got %v, want %v", FeatureNames[i], got[i], values[i])
		}
	}
	if tempo, ok := v.Get(FeatureTempo); !ok || tempo != 128 {
		t.Fatalf("tempo: got %v %v", tempo, ok)
	}
	if _, ok := v.Get("popularity"); ok {
		t.Fatal("unknown feature should not resolve")
	}

	if _, err := FeatureVectorFromValues(values[:11]); !errors.Is(err, ErrFeatureShape) {
		t.Fatalf("expected ErrFeatureShape, got %v", err)
	}
}

func TestFeatureVector_Validate(t *testing.T) {
	if err := (FeatureVector{Tempo: 120}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := FeatureVector{Liveness: math.NaN()}.Validate()
	var shapeErr *FeatureShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected FeatureShapeError, got %v", err)
	}
	if shapeErr.Field != FeatureLiveness {
		t.Fatalf("field: got %q, want %q", shapeErr.Field, FeatureLiveness)
	}
}

func TestParseSearchField(t *testing.T) {
	for _, name := range []string{"track_artist", "track_name", "playlist_genre"} {
		if _, err := ParseSearchField(name); err != nil {
			t.Fatalf("%s: unexpected error %v", name, err)
		}
	}
	for _, name := range []string{"", "track_album_name", "track_name; --"} {
		if _, err := ParseSearchField(name); !errors.Is(err, ErrInvalidField) {
			t.Fatalf("%q: expected ErrInvalidField, got %v", name, err)
		}
	}
}

func TestParseColumn(t *testing.T) {
	c, err := ParseColumn("valence")
	if err != nil || !c.Numeric() {
		t.Fatalf("valence: got %q %v", c, err)
	}
	c, err = ParseColumn("track_artist")
	if err != nil || c.Numeric() {
		t.Fatalf("track_artist: got %q %v", c, err)
	}
	if _, err := ParseColumn("password"); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
}
