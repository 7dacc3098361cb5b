package transport

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"

	"github.com/anime-shed/design-inspector-go/internal/analyzer"
	"github.com/anime-shed/design-inspector-go/internal/config"
	apperrors "github.com/anime-shed/design-inspector-go/internal/errors"
	"github.com/anime-shed/design-inspector-go/internal/logger"
	"github.com/anime-shed/design-inspector-go/internal/observer"
	"github.com/anime-shed/design-inspector-go/internal/service"
	"github.com/anime-shed/design-inspector-go/internal/workerpool"
	"github.com/anime-shed/design-inspector-go/pkg/models"
)

// Version is reported by the health endpoint
var Version = "1.0.0"

const (
	// UploadField is the multipart form field holding the design image
	UploadField = "design"
	// multipart framing on top of the file itself
	multipartOverhead = 1 << 20
)

// MetricsResponse is returned by GET /metrics
type MetricsResponse struct {
	Analysis   observer.MetricsSnapshot `json:"analysis"`
	WorkerPool *workerpool.Stats        `json:"worker_pool,omitempty"`
}

type handler struct {
	svc     service.DesignAnalysisService
	metrics *observer.MetricsObserver
	pool    *workerpool.WorkerPool
	cfg     *config.Config
}

// NewHandler builds the gin router. metrics and pool may be nil.
func NewHandler(svc service.DesignAnalysisService, metrics *observer.MetricsObserver, pool *workerpool.WorkerPool, cfg *config.Config) http.Handler {
	h := &handler{svc: svc, metrics: metrics, pool: pool, cfg: cfg}

	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxRequestBodySize + multipartOverhead

	r.Use(
		requestID(),
		requestLogger(),
		gin.Recovery(),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	r.GET("/metrics", h.getMetrics)

	analysis := r.Group("/", requestTimeout(cfg.RequestTimeout))
	analysis.POST("/upload", requestSizeLimiter(cfg.MaxRequestBodySize+multipartOverhead), h.uploadDesign)
	analysis.POST("/analyze", requestSizeLimiter(64<<10), h.analyzeURL)

	return r
}

func (h *handler) uploadDesign(c *gin.Context) {
	fileHeader, err := c.FormFile(UploadField)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondError(c, err)
			return
		}
		respondError(c, apperrors.NewValidationError("no design file uploaded", err).
			WithDetails("expected a multipart form with a '"+UploadField+"' file field"))
		return
	}

	if fileHeader.Size > h.cfg.MaxRequestBodySize {
		respondError(c, apperrors.NewTooLargeError("uploaded file exceeds size limit", nil))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, apperrors.NewInternalError("failed to open uploaded file", err))
		return
	}
	defer file.Close()

	// One byte past the limit lets the validator report too_large
	data, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxRequestBodySize+1))
	if err != nil {
		respondError(c, apperrors.NewInternalError("failed to read uploaded file", err))
		return
	}

	opts := h.analysisOptions(c)
	report, err := h.svc.AnalyzeUpload(c.Request.Context(), fileHeader.Filename, data, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.FromContext(c.Request.Context()).WithFields(logrus.Fields{
		"filename":        fileHeader.Filename,
		"bytes":           len(data),
		"recommendations": len(report.Recommendations),
	}).Debug("Upload analyzed")

	c.JSON(http.StatusOK, report)
}

func (h *handler) analyzeURL(c *gin.Context) {
	var req models.AnalyzeURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondError(c, err)
			return
		}
		respondError(c, apperrors.NewValidationError("invalid request format", err))
		return
	}

	report, err := h.svc.AnalyzeURL(c.Request.Context(), req.URL, h.analysisOptions(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// analysisOptions resolves the recommendation locale from ?lang, then Accept-Language, then the configured default
func (h *handler) analysisOptions(c *gin.Context) analyzer.Options {
	locale := analyzer.MatchLocale(c.Query("lang"), c.GetHeader("Accept-Language"), h.cfg.DefaultLocale)
	c.Header("Content-Language", localeName(locale))
	return analyzer.DefaultOptions().WithLocale(locale)
}

func localeName(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

func (h *handler) getMetrics(c *gin.Context) {
	resp := MetricsResponse{}
	if h.metrics != nil {
		resp.Analysis = h.metrics.GetMetrics()
	}
	if h.pool != nil {
		stats := h.pool.GetStats()
		resp.WorkerPool = &stats
	}
	c.JSON(http.StatusOK, resp)
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "available",
		Version: Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

func errorBody(code int, message, details string) models.ErrorResponse {
	return models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Details: details,
	}
}
