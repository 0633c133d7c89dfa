package transport

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go-plant-inspector/internal/config"
	apperrors "go-plant-inspector/internal/errors"
	"go-plant-inspector/internal/logger"
	"go-plant-inspector/internal/observer"
	"go-plant-inspector/internal/service"
	"go-plant-inspector/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// uploadField is the multipart field carrying an uploaded photo
const uploadField = "photo"

// NewHandler builds the HTTP API on top of the analysis service
func NewHandler(svc service.PlantAnalysisService, metrics *observer.MetricsObserver, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck(svc))
	r.GET("/metrics", metricsHandler(metrics))
	r.POST("/analyze", analyzePhoto(svc, cfg))
	r.POST("/analyze/upload", analyzeUpload(svc, cfg))
	r.POST("/analyze/batch", analyzeBatch(svc, cfg))

	return r
}

func analyzePhoto(svc service.PlantAnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logRequest(c, "Processing plant analysis request")

		var req models.AnalysisRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError("Invalid request format", err))
			return
		}

		opts := queryOptions(c, service.AnalysisRequestOptions{
			Strategy:            req.Strategy,
			IncludeColorProfile: req.IncludeColorProfile,
		})

		rep, err := svc.AnalyzeSource(ctx, req.URL, opts)
		if err != nil {
			respondError(c, err)
			return
		}

		logger.WithFields(logrus.Fields{
			"url":                req.URL,
			"strategy":           rep.Strategy,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
			"health_score":       rep.HealthScore,
			"status":             rep.Status,
		}).Info("Plant analysis completed successfully")

		c.JSON(http.StatusOK, rep)
	}
}

func analyzeUpload(svc service.PlantAnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logRequest(c, "Processing photo upload")

		header, err := c.FormFile(uploadField)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				respondError(c, apperrors.NewValidationError("Upload exceeds the request size limit", err))
				return
			}
			respondError(c, apperrors.NewValidationError("Multipart field \"photo\" is required", err))
			return
		}

		file, err := header.Open()
		if err != nil {
			respondError(c, apperrors.NewInternalError("Failed to read upload", err))
			return
		}
		defer file.Close()

		rep, err := svc.AnalyzeUpload(ctx, file, queryOptions(c, service.AnalysisRequestOptions{}))
		if err != nil {
			respondError(c, err)
			return
		}

		logger.WithFields(logrus.Fields{
			"filename":           header.Filename,
			"size":               header.Size,
			"strategy":           rep.Strategy,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
			"health_score":       rep.HealthScore,
		}).Info("Upload analysis completed successfully")

		c.JSON(http.StatusOK, rep)
	}
}

func analyzeBatch(svc service.PlantAnalysisService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logRequest(c, "Processing batch analysis request")

		var req models.BatchAnalysisRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError("Invalid request format", err))
			return
		}

		resp, err := svc.AnalyzeBatch(ctx, req.URLs, queryOptions(c, service.AnalysisRequestOptions{
			Strategy:            req.Strategy,
			IncludeColorProfile: req.IncludeColorProfile,
		}))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// queryOptions applies the strategy and include_color_profile query
// parameters over opts. Every analysis endpoint accepts both; a query value
// takes precedence over the JSON body.
func queryOptions(c *gin.Context, opts service.AnalysisRequestOptions) service.AnalysisRequestOptions {
	if s := c.Query("strategy"); s != "" {
		opts.Strategy = s
	}
	if v := c.Query("include_color_profile"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.IncludeColorProfile = b
		}
	}
	return opts
}

func healthCheck(svc service.PlantAnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "available",
			"version":    Version,
			"strategies": svc.Strategies(),
			"time":       time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func metricsHandler(metrics *observer.MetricsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", observer.ContentType())
		c.Status(http.StatusOK)
		if err := metrics.Expose(c.Writer); err != nil {
			logger.WithError(err).Error("Failed to write metrics")
		}
	}
}

func logRequest(c *gin.Context, msg string) {
	logger.WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"user_agent": c.Request.UserAgent(),
		"ip":         c.ClientIP(),
	}).Info(msg)
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			respondError(c, c.Errors.Last().Err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// userMessage hides internal detail from clients
func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.UserMessage()
	}
	return "request processing failed"
}

func respondError(c *gin.Context, err error) {
	code := determineStatusCode(err)

	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: userMessage(err),
	})
}
