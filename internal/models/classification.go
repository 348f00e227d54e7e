package models

// ClassifyRequest is the body of POST /api/classify.
// Text is a pointer so that an empty string is accepted while a missing field is not.
type ClassifyRequest struct {
	Text *string `json:"text" binding:"required"`
}

// ClassificationResult is the calibrated output for a single text.
type ClassificationResult struct {
	PredictedClass int       `json:"predicted_class"`
	Label          string    `json:"label"`
	Probabilities  []float64 `json:"probabilities"`
	Confidence     float64   `json:"confidence"`
}
