package model

// Tensor is a dense float32 tensor in NCHW layout.
type Tensor struct {
	Shape []int64
	Data  []float32
}

// Classifier maps a normalized image tensor to one raw score per label.
// Implementations are shared read-only between requests.
type Classifier interface {
	Forward(t *Tensor) ([]float32, error)
	Close() error
}

// Prediction is the top-1 result of a single classification.
type Prediction struct {
	Label         string
	Index         int
	Confidence    float64 // percent, rounded to 2 decimals
	Probabilities []float64
}

type PredictionResponse struct {
	Prediction string `json:"prediction"`
	Confidence string `json:"confidence"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
