package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// InvalidFeaturesMessage is the error payload text returned for a rejected feature vector.
const InvalidFeaturesMessage = "Invalid input. Expected 4 features."

var (
	ErrInvalidFeatures   = errors.New(InvalidFeaturesMessage)
	ErrDistributionShape = errors.New("distribution length does not match class count")
)

// Classifier is the inference surface of a loaded model.
type Classifier interface {
	Infer(FeatureVector) (Distribution, error)
}

// ParseFeatures decodes the raw "features" field of a request. Anything other than
// an array of exactly FeatureCount numbers is rejected with ErrInvalidFeatures.
func ParseFeatures(raw json.RawMessage) (FeatureVector, error) {
	var vec FeatureVector

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return vec, ErrInvalidFeatures
	}

	var values []float64
	if err := json.Unmarshal(raw, &values); err != nil {
		return vec, ErrInvalidFeatures
	}
	if len(values) != FeatureCount {
		return vec, ErrInvalidFeatures
	}

	for i, v := range values {
		vec[i] = float32(v)
	}
	return vec, nil
}

// Predict runs the classifier on vec and maps the arg-max to its label.
// On exact ties the lowest index wins.
func Predict(c Classifier, vec FeatureVector) (*PredictionResponse, error) {
	dist, err := c.Infer(vec)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	if len(dist) != len(classes) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDistributionShape, len(dist), len(classes))
	}

	maxIdx := 0
	maxVal := dist[0]
	probabilities := make(map[string]float32, len(classes))

	for i, val := range dist {
		probabilities[classes[i]] = val
		if val > maxVal {
			maxVal = val
			maxIdx = i
		}
	}

	return &PredictionResponse{
		PredictedClass: classes[maxIdx],
		Confidence:     maxVal,
		Probabilities:  probabilities,
	}, nil
}
