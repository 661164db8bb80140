package vectorindex

import "context"

// Match is one nearest-neighbor hit. Id is kept as a string because the
// index stores opaque keys; callers decide whether an id parses.
type Match struct {
	Id    string
	Score float64
}

// Index is a nearest-neighbor lookup over message embeddings.
//
// Query returns up to topK matches ordered best-first by the configured
// distance metric (cosine). Upsert inserts or overwrites the vector stored
// under id.
type Index interface {
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
	Upsert(ctx context.Context, id string, vector []float32) error
}
