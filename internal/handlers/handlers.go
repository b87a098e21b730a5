package handlers

import (
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Brownie44l1/image-classifier/internal/classifier"
)

// MaxUploadSize bounds the multipart body of an image upload.
const MaxUploadSize = 10 << 20

// PredictionResponse is returned by the predict endpoints.
type PredictionResponse struct {
	Model       string                  `json:"model"`
	Class       string                  `json:"class"`
	Confidence  float32                 `json:"confidence"`
	Predictions []classifier.Prediction `json:"predictions"`
}

type Handler struct {
	session *classifier.Session
	logger  *zap.Logger
	timeout time.Duration
}

// NewHandler creates a Handler around a session that may still be loading.
// Every predict call is bounded by timeout.
func NewHandler(session *classifier.Session, logger *zap.Logger, timeout time.Duration) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		session: session,
		logger:  logger,
		timeout: timeout,
	}
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Ready handles GET /ready. It reports ready once the model has loaded.
func (h *Handler) Ready(c *gin.Context) {
	ready := h.session.Ready()
	if !ready.Settled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "model loading"})
		return
	}
	if _, err := ready.Await(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": err.Error()})
		return
	}

	cfg := h.session.Config()
	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"model":   cfg.Name,
		"version": cfg.Version,
		"alpha":   cfg.Alpha,
		"topk":    cfg.TopK,
		"video":   h.session.Video() != nil,
	})
}

// PredictFromImage handles POST /api/v1/predict/image. The image is read from
// the "image" form field.
func (h *Handler) PredictFromImage(c *gin.Context) {
	args, ok := h.topKArgs(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize)
	header, err := c.FormFile("image")
	if err != nil {
		HandleInvalidRequest(c, "no image file provided, use 'image' as the form field name")
		return
	}
	file, err := header.Open()
	if err != nil {
		HandleInvalidRequest(c, "failed to read uploaded image")
		return
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		HandleInvalidRequest(c, "invalid image format, supported: JPEG, PNG")
		return
	}

	h.logger.Debug("Received image",
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
		zap.String("format", format),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
	)

	h.predict(c, append([]any{img}, args...)...)
}

// PredictFromVideo handles POST /api/v1/predict/frame. It classifies the
// current frame of the bound video source.
func (h *Handler) PredictFromVideo(c *gin.Context) {
	args, ok := h.topKArgs(c)
	if !ok {
		return
	}
	h.predict(c, args...)
}

// topKArgs reads the optional topk query parameter as a predict argument.
func (h *Handler) topKArgs(c *gin.Context) ([]any, bool) {
	raw := c.Query("topk")
	if raw == "" {
		return nil, true
	}
	k, err := strconv.Atoi(raw)
	if err != nil || k < 1 {
		HandleInvalidRequest(c, "topk must be a positive integer")
		return nil, false
	}
	return []any{k}, true
}

func (h *Handler) predict(c *gin.Context, args ...any) {
	c.Set(ModelKey, string(h.session.Config().Name))

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	preds, err := h.session.Predict(ctx, args...).Await(ctx)
	if err != nil {
		h.logger.Warn("Prediction error",
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err),
		)
		HandleClassifierError(c, err)
		return
	}

	resp := PredictionResponse{
		Model:       string(h.session.Config().Name),
		Predictions: preds,
	}
	if len(preds) > 0 {
		resp.Class = preds[0].Label
		resp.Confidence = preds[0].Confidence
	}
	respondSuccess(c, http.StatusOK, resp)
}
