package domain

import "math"

// FeatureCount is the dimensionality of every FeatureVector.
const FeatureCount = 12

// Feature names, in vector order.
const (
	FeatureDanceability     = "danceability"
	FeatureEnergy           = "energy"
	FeatureKey              = "key"
	FeatureLoudness         = "loudness"
	FeatureMode             = "mode"
	FeatureSpeechiness      = "speechiness"
	FeatureAcousticness     = "acousticness"
	FeatureInstrumentalness = "instrumentalness"
	FeatureLiveness         = "liveness"
	FeatureValence          = "valence"
	FeatureTempo            = "tempo"
	FeatureDurationMs       = "duration_ms"
)

// FeatureNames lists the feature fields in the order used for distance math.
var FeatureNames = [FeatureCount]string{
	FeatureDanceability,
	FeatureEnergy,
	FeatureKey,
	FeatureLoudness,
	FeatureMode,
	FeatureSpeechiness,
	FeatureAcousticness,
	FeatureInstrumentalness,
	FeatureLiveness,
	FeatureValence,
	FeatureTempo,
	FeatureDurationMs,
}

// FeatureVector holds the audio attributes of one song. Values are raw, not
// rescaled: tempo and duration_ms dominate Euclidean distance.
type FeatureVector struct {
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Key              float64 `json:"key"`
	Loudness         float64 `json:"loudness"`
	Mode             float64 `json:"mode"`
	Speechiness      float64 `json:"speechiness"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	DurationMs       float64 `json:"duration_ms"`
}

// Values returns the features in FeatureNames order.
func (v FeatureVector) Values() [FeatureCount]float64 {
	return [FeatureCount]float64{
		v.Danceability,
		v.Energy,
		v.Key,
		v.Loudness,
		v.Mode,
		v.Speechiness,
		v.Acousticness,
		v.Instrumentalness,
		v.Liveness,
		v.Valence,
		v.Tempo,
		v.DurationMs,
	}
}

// Get returns the named feature value.
func (v FeatureVector) Get(name string) (float64, bool) {
	i, ok := featureIndex[name]
	if !ok {
		return 0, false
	}
	return v.Values()[i], true
}

// FeatureVectorFromValues builds a vector from values in FeatureNames order.
func FeatureVectorFromValues(values []float64) (FeatureVector, error) {
	if len(values) != FeatureCount {
		return FeatureVector{}, &FeatureShapeError{Reason: "expected 12 feature values"}
	}
	return FeatureVector{
		Danceability:     values[0],
		Energy:           values[1],
		Key:              values[2],
		Loudness:         values[3],
		Mode:             values[4],
		Speechiness:      values[5],
		Acousticness:     values[6],
		Instrumentalness: values[7],
		Liveness:         values[8],
		Valence:          values[9],
		Tempo:            values[10],
		DurationMs:       values[11],
	}, nil
}

// Validate reports the first non-finite field.
func (v FeatureVector) Validate() error {
	for i, val := range v.Values() {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return &FeatureShapeError{Field: FeatureNames[i], Reason: "value is not a finite number"}
		}
	}
	return nil
}

// IsFeature reports whether name is one of the 12 feature fields.
func IsFeature(name string) bool {
	_, ok := featureIndex[name]
	return ok
}

var featureIndex = func() map[string]int {
	m := make(map[string]int, FeatureCount)
	for i, name := range FeatureNames {
		m[name] = i
	}
	return m
}()

// SongKey is the natural key of a song. The catalog has no unique track id.
type SongKey struct {
	TrackName   string `json:"track_name"`
	TrackArtist string `json:"track_artist"`
}

// SongRecord represents one catalog song.
type SongRecord struct {
	TrackName   string        `json:"track_name"`
	TrackArtist string        `json:"track_artist"`
	AlbumName   string        `json:"track_album_name"`
	Genre       string        `json:"playlist_genre,omitempty"`
	Subgenre    string        `json:"playlist_subgenre,omitempty"`
	Features    FeatureVector `json:"features"`
}

// Key returns the natural key of the song.
func (s SongRecord) Key() SongKey {
	return SongKey{TrackName: s.TrackName, TrackArtist: s.TrackArtist}
}
