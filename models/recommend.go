package models

// RecommendationSeed is one starting point for recommendations: either a
// concrete catalogue id or a free-text title to match fuzzily. When both
// are present the id wins.
type RecommendationSeed struct {
	MediaType string `json:"mediaType,omitempty"`
	ContentID int64  `json:"contentId,omitempty"`
	Title     string `json:"title,omitempty"`
}

// RecommendRequest is the body of the recommendations endpoint.
type RecommendRequest struct {
	Seeds []RecommendationSeed `json:"seeds"`
}
