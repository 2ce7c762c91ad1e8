package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Classify runs a forward pass and returns the top-1 label with its softmax
// confidence. Ties resolve to the lowest class index.
func Classify(t *Tensor, c Classifier) (Prediction, error) {
	scores, err := c.Forward(t)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %v", ErrInference, err)
	}

	if len(scores) != NumClasses {
		return Prediction{}, fmt.Errorf("%w: classifier returned %d scores for %d labels",
			ErrShapeMismatch, len(scores), NumClasses)
	}

	logits := make([]float64, len(scores))
	for i, s := range scores {
		logits[i] = float64(s)
		if math.IsNaN(logits[i]) || math.IsInf(logits[i], 0) {
			return Prediction{}, fmt.Errorf("%w: non-finite score %v for %s", ErrInference, s, Labels[i])
		}
	}

	idx := floats.MaxIdx(logits)
	probs := Softmax(logits)

	return Prediction{
		Label:         Labels[idx],
		Index:         idx,
		Confidence:    roundPercent(probs[idx]),
		Probabilities: probs,
	}, nil
}

// Softmax returns a probability distribution over logits. The input is not
// modified.
func Softmax(logits []float64) []float64 {
	probs := make([]float64, len(logits))
	if len(logits) == 0 {
		return probs
	}

	copy(probs, logits)
	floats.AddConst(-floats.Max(probs), probs)
	for i, v := range probs {
		probs[i] = math.Exp(v)
	}
	floats.Scale(1/floats.Sum(probs), probs)

	return probs
}

func roundPercent(p float64) float64 {
	return math.Round(p*100*100) / 100
}
