package domain

import (
	"errors"
	"fmt"
)

// Data integrity errors. These are fatal at startup.
var (
	ErrEmptyCatalog = errors.New("domain: catalog is empty")
	ErrFeatureShape = errors.New("domain: malformed feature vector")
)

// Invariant errors. These are reported to the caller and leave state untouched.
var (
	ErrInsufficientSeeds    = errors.New("domain: not enough seed songs")
	ErrInvalidNeighborCount = errors.New("domain: neighbor count must be at least 1")
	ErrEmptyPlaylist        = errors.New("domain: playlist has no songs")
	ErrInvalidField         = errors.New("domain: field is not allowed")
	ErrInvalidUserID        = errors.New("domain: invalid user id")
	ErrInvalidPlaylistName  = errors.New("domain: playlist name cannot be empty")
	ErrNoResult             = errors.New("domain: no search result to save")
)

var (
	ErrNotFound        = errors.New("domain: not found")
	ErrSessionNotFound = errors.New("domain: session not found")
)

// FeatureShapeError names the song and field with a missing or unusable feature.
type FeatureShapeError struct {
	Key    SongKey
	Field  string
	Reason string
}

func (e *FeatureShapeError) Error() string {
	switch {
	case e.Key != (SongKey{}) && e.Field != "":
		return fmt.Sprintf("domain: feature %q of %q by %q: %s", e.Field, e.Key.TrackName, e.Key.TrackArtist, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("domain: feature %q: %s", e.Field, e.Reason)
	case e.Reason != "":
		return "domain: malformed feature vector: " + e.Reason
	}
	return ErrFeatureShape.Error()
}

func (e *FeatureShapeError) Is(target error) bool {
	return target == ErrFeatureShape
}

// InsufficientSeedsError is returned when a search gets fewer than MinSeeds seeds.
type InsufficientSeedsError struct {
	Got int
}

func (e *InsufficientSeedsError) Error() string {
	return fmt.Sprintf("domain: need at least %d seed songs, got %d", MinSeeds, e.Got)
}

func (e *InsufficientSeedsError) Is(target error) bool {
	return target == ErrInsufficientSeeds
}

// InvalidNeighborCountError carries the rejected neighbor count.
type InvalidNeighborCountError struct {
	K int
}

func (e *InvalidNeighborCountError) Error() string {
	return fmt.Sprintf("domain: neighbor count must be at least 1, got %d", e.K)
}

func (e *InvalidNeighborCountError) Is(target error) bool {
	return target == ErrInvalidNeighborCount
}
