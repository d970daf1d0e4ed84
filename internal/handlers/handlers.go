package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Brownie44l1/fault-api/internal/audit"
	"github.com/Brownie44l1/fault-api/internal/model"
	"github.com/Brownie44l1/fault-api/internal/predictor"
	"github.com/gin-gonic/gin"
)

const (
	maxBodyBytes        = 4 << 10
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// History lists recorded predictions.
type History interface {
	Recent(ctx context.Context, limit int) ([]audit.Entry, error)
}

type Handler struct {
	predictor *predictor.Predictor
	history   History
	modelPath string
	logger    *slog.Logger
}

// NewHandler wires the HTTP handlers. history may be nil when the prediction log is disabled.
func NewHandler(p *predictor.Predictor, history History, modelPath string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		predictor: p,
		history:   history,
		modelPath: modelPath,
		logger:    logger,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"model":    h.modelPath,
		"features": model.FeatureCount,
	})
}

func (h *Handler) Faults(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"faults": model.Faults()})
}

func (h *Handler) Predict(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, model.ErrorResponse{Error: "Request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Failed to read request body"})
		return
	}

	requestID := c.GetString(requestIDKey)
	result, err := h.predictor.Handle(c.Request.Context(), "http", requestID, body)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, model.ErrInvalidFeatures):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: model.InvalidFeaturesMessage})
	case errors.Is(err, predictor.ErrInvalidJSON):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid JSON"})
	default:
		h.logger.Error("prediction error", "request_id", requestID, "error", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Prediction failed"})
	}
}

func (h *Handler) Predictions(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "Prediction log is disabled"})
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := h.history.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list predictions", "error", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to list predictions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"predictions": entries})
}
