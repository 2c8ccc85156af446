// Package soundscape reduces the classifier's raw acoustic-event taxonomy to
// a small set of semantic sound categories and an environment-type estimate.
// Everything in this package is pure and deterministic.
package soundscape

// ClassScore pairs a raw classifier class name with its mean score.
type ClassScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// CategoryResult is one semantic sound category with its normalized confidence.
type CategoryResult struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// EnvironmentAnalysis estimates the type of environment the audio was
// recorded in.
type EnvironmentAnalysis struct {
	PrimaryType string             `json:"primary_type"`
	TypeScores  map[string]float64 `json:"type_scores"`
	Description string             `json:"description"`
}

// Result is the full mapping output for one analysis.
type Result struct {
	Categories  []CategoryResult    `json:"classifications"`
	Environment EnvironmentAnalysis `json:"environment"`
}
