package model

import "encoding/json"

// FeatureCount is the number of signal measurements the classifier takes.
const FeatureCount = 4

var classes = [FeatureCount]string{"No Fault", "LL Fault", "GO Fault", "GG Fault"}

// Classes returns the label set in classifier output order.
func Classes() []string {
	out := make([]string, len(classes))
	copy(out, classes[:])
	return out
}

// FeatureVector is one set of measured signal inputs.
type FeatureVector [FeatureCount]float32

// Distribution holds one score per class, in class order.
type Distribution []float32

type Metadata struct {
	InputName   string   `json:"input_name"`
	OutputName  string   `json:"output_name"`
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
}

type PredictionRequest struct {
	Features json.RawMessage `json:"features"`
}

type PredictionResponse struct {
	PredictedClass string             `json:"predicted_class"`
	Confidence     float32            `json:"confidence"`
	Probabilities  map[string]float32 `json:"probabilities"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
