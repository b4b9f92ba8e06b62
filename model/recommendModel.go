package model

// Candidate is a ranked recommendation. Score lies in [0,1]; Content and
// Collaborative are the unweighted signals it was blended from.
type Candidate struct {
	Book          Book     `json:"book"`
	Score         float64  `json:"score"`
	Authors       []string `json:"authors"`
	Categories    []string `json:"categories"`
	Content       float64  `json:"content"`
	Collaborative float64  `json:"collaborative"`
}
