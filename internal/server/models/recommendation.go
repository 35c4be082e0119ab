package models

// Recommendation is the advice relayed from the recommendation engine.
// GeneratedAt is passed through exactly as the engine formatted it.
type Recommendation struct {
	Text        string
	GeneratedAt string
}
