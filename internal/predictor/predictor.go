package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/Brownie44l1/fault-api/internal/audit"
	"github.com/Brownie44l1/fault-api/internal/model"
)

var ErrInvalidJSON = errors.New("invalid json body")

// Recorder persists successful predictions.
type Recorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// Predictor turns a raw request body into a prediction. It is shared by the
// HTTP handlers and the MQTT bridge.
type Predictor struct {
	classifier model.Classifier
	recorder   Recorder
	logger     *slog.Logger
}

// New returns a Predictor. recorder may be nil.
func New(classifier model.Classifier, recorder Recorder, logger *slog.Logger) *Predictor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Predictor{
		classifier: classifier,
		recorder:   recorder,
		logger:     logger,
	}
}

// Handle validates body and runs inference. It returns ErrInvalidJSON for bodies
// that are not a JSON object, model.ErrInvalidFeatures for a bad feature vector,
// and any other error for inference failures.
func (p *Predictor) Handle(ctx context.Context, source, requestID string, body []byte) (*model.PredictionResponse, error) {
	var req model.PredictionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, ErrInvalidJSON
	}

	vec, err := model.ParseFeatures(req.Features)
	if err != nil {
		return nil, err
	}

	result, err := model.Predict(p.classifier, vec)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("prediction",
		"request_id", requestID,
		"source", source,
		"predicted_class", result.PredictedClass,
		"confidence", result.Confidence,
	)

	if p.recorder != nil {
		entry := audit.Entry{
			RequestID:      requestID,
			Source:         source,
			Features:       vec[:],
			PredictedClass: result.PredictedClass,
			Confidence:     result.Confidence,
			Probabilities:  result.Probabilities,
		}
		if err := p.recorder.Record(ctx, entry); err != nil {
			p.logger.Error("failed to record prediction", "request_id", requestID, "error", err)
		}
	}

	return result, nil
}
