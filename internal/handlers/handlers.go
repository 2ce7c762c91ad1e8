package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sherajsharif/crop-disease-Api/internal/metrics"
	"github.com/sherajsharif/crop-disease-Api/internal/model"
)

const (
	msgNotLoaded       = "Model not loaded. Please try again later"
	msgNoImage         = "No image provided"
	msgNoSelectedFile  = "No selected file"
	msgInvalidFileType = "Invalid file type. Allowed types: jpg, jpeg, png, bmp"
	msgProcessing      = "Error processing image. Please try again with a valid image"
	msgTooLarge        = "File too large"
	msgReloadFailed    = "Model reload failed"
)

// DefaultMaxUploadBytes caps the request body of /predict.
const DefaultMaxUploadBytes = 10 << 20

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
}

type Handler struct {
	registry       *model.Registry
	logger         *zap.Logger
	maxUploadBytes int64
}

func NewHandler(registry *model.Registry, logger *zap.Logger, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		registry:       registry,
		logger:         logger.Named("handlers"),
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) modelStatus() string {
	if h.registry.Loaded() {
		return "loaded"
	}
	return "not loaded"
}

func (h *Handler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "running",
		"message":      "Plant Disease Detection API is running!",
		"model_status": h.modelStatus(),
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"model_loaded": h.registry.Loaded(),
	})
}

func (h *Handler) Predict(c *gin.Context) {
	if !h.registry.Loaded() {
		h.logger.Warn("prediction rejected, model not loaded", zap.Stringer("state", h.registry.State()))
		abort(c, http.StatusServiceUnavailable, msgNotLoaded)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	part, err := imagePart(c.Request)
	if err != nil {
		if isTooLarge(err) {
			abort(c, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		if !errors.Is(err, errNoImagePart) {
			h.logger.Info("malformed multipart body", zap.Error(err))
		}
		abort(c, http.StatusBadRequest, msgNoImage)
		return
	}
	defer part.Close()

	filename := part.FileName()
	if filename == "" {
		abort(c, http.StatusBadRequest, msgNoSelectedFile)
		return
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		h.logger.Info("rejected upload", zap.String("filename", filename))
		abort(c, http.StatusBadRequest, msgInvalidFileType)
		return
	}

	h.logger.Info("received file", zap.String("filename", filename))

	prediction, err := h.predict(part)
	if err != nil {
		switch {
		case isTooLarge(err):
			abort(c, http.StatusRequestEntityTooLarge, msgTooLarge)
		case errors.Is(err, model.ErrNotLoaded):
			abort(c, http.StatusServiceUnavailable, msgNotLoaded)
		default:
			h.logger.Error("prediction failed", zap.String("filename", filename), zap.Error(err))
			abort(c, http.StatusInternalServerError, msgProcessing)
		}
		return
	}

	h.logger.Info("prediction complete",
		zap.String("label", prediction.Label), zap.Float64("confidence", prediction.Confidence))
	metrics.Predictions.WithLabelValues(prediction.Label).Inc()

	c.JSON(http.StatusOK, model.PredictionResponse{
		Prediction: prediction.Label,
		Confidence: fmt.Sprintf("%.2f %%", prediction.Confidence),
	})
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}

func (h *Handler) predict(upload io.Reader) (model.Prediction, error) {
	raw, err := io.ReadAll(upload)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("read upload: %w", err)
	}

	tensor, err := model.Preprocess(raw)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("preprocess %d bytes: %w", len(raw), err)
	}

	h.logger.Debug("preprocessed image", zap.Int64s("shape", tensor.Shape))

	return h.registry.Classify(tensor)
}

func (h *Handler) Reload(c *gin.Context) {
	if err := h.registry.Reload(c.Request.Context()); err != nil {
		abort(c, http.StatusServiceUnavailable, msgReloadFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "reloaded",
		"model_status": h.modelStatus(),
	})
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, model.ErrorResponse{Error: msg})
}
