// Package similarity answers nearest-neighbor questions over the song catalog.
//
// The Index is a flat scan over raw feature vectors using unweighted
// Euclidean distance. Features are not rescaled, so tempo and duration_ms
// dominate the distance. The Index is immutable after Build and safe for
// concurrent use by any number of sessions.
//
// FindSimilar runs one query per seed song and merges the answers into a
// single list, deduplicated by natural key, in discovery order.
package similarity
