// Package rest provides the JSON HTTP adapter over the document
// session coordinator. Handlers validate input, run the matching
// editor operation under the coordinator's locking discipline, and
// answer in a uniform JSON envelope. Page, bookmark, annotation, and
// image indices are 0-based throughout the API.
package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/ratelimit"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/service"
)

const defaultMaxUploadBytes = 50 << 20

// Handler provides the JSON API endpoints of the editing service.
type Handler struct {
	coordinator  *service.Coordinator
	limiter      ratelimit.RateLimiter
	rateCfg      ratelimit.RateLimitConfig
	metrics      *Metrics
	gatherer     prometheus.Gatherer
	logger       *slog.Logger
	validate     *validator.Validate
	uploadDir    string
	maxUpload    int64
	maxZoom      float64
	apiKeyHashes []string
}

// Option configures a Handler dependency.
type Option func(*Handler)

// WithRateLimiter enables GCRA rate limiting with the given config.
func WithRateLimiter(l ratelimit.RateLimiter, cfg ratelimit.RateLimitConfig) Option {
	return func(h *Handler) {
		h.limiter = l
		h.rateCfg = cfg
	}
}

// WithMetrics sets the metrics sink and the gatherer backing /metrics.
func WithMetrics(m *Metrics, g prometheus.Gatherer) Option {
	return func(h *Handler) {
		h.metrics = m
		h.gatherer = g
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// WithMaxUploadBytes caps the accepted upload size.
func WithMaxUploadBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxUpload = n
		}
	}
}

// WithMaxZoom caps the preview zoom factor.
func WithMaxZoom(z float64) Option {
	return func(h *Handler) {
		if z > 0 {
			h.maxZoom = z
		}
	}
}

// WithAPIKeyHashes enables API key authentication against the given
// argon2id hashes.
func WithAPIKeyHashes(hashes []string) Option {
	return func(h *Handler) { h.apiKeyHashes = hashes }
}

// NewHandler creates a Handler over the coordinator. uploadDir holds
// upload temp files until session creation takes ownership of them.
func NewHandler(coordinator *service.Coordinator, uploadDir string, opts ...Option) *Handler {
	h := &Handler{
		coordinator: coordinator,
		logger:      slog.Default(),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		uploadDir:   uploadDir,
		maxUpload:   defaultMaxUploadBytes,
		maxZoom:     4,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns an http.Handler with all routes registered and the
// middleware chain applied.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.handleHealth)
	if h.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}

	// Session lifecycle.
	mux.HandleFunc("POST /api/documents/upload", h.handleUpload)
	mux.HandleFunc("GET /api/documents/{id}", h.handleInfo)
	mux.HandleFunc("DELETE /api/documents/{id}", h.handleDelete)
	mux.HandleFunc("GET /api/documents/{id}/download", h.handleDownload)

	// Page manipulation.
	mux.HandleFunc("GET /api/documents/{id}/pages/count", h.handlePageCount)
	mux.HandleFunc("GET /api/documents/{id}/pages/{n}/preview", h.handlePagePreview)
	mux.HandleFunc("DELETE /api/documents/{id}/pages/{n}", h.handlePageDelete)
	mux.HandleFunc("POST /api/documents/{id}/pages/{n}/rotate", h.handlePageRotate)
	mux.HandleFunc("POST /api/documents/{id}/pages/{n}/duplicate", h.handlePageDuplicate)
	mux.HandleFunc("POST /api/documents/{id}/pages/{n}/resize", h.handlePageResize)
	mux.HandleFunc("POST /api/documents/{id}/pages/{n}/crop", h.handlePageCrop)
	mux.HandleFunc("POST /api/documents/{id}/pages/extract", h.handlePagesExtract)
	mux.HandleFunc("POST /api/documents/{id}/pages/insert-file", h.handlePagesInsertFile)
	mux.HandleFunc("POST /api/documents/{id}/pages/remove-blank", h.handleRemoveBlank)
	mux.HandleFunc("POST /api/documents/{id}/pages/numbering", h.handlePageNumbering)
	mux.HandleFunc("POST /api/documents/{id}/pages/header-footer", h.handleHeaderFooter)

	// Text processing.
	mux.HandleFunc("POST /api/documents/{id}/text/search", h.handleTextSearch)
	mux.HandleFunc("POST /api/documents/{id}/text/replace", h.handleTextReplace)
	mux.HandleFunc("GET /api/documents/{id}/text/properties", h.handleTextProperties)
	mux.HandleFunc("GET /api/documents/{id}/text/fonts", h.handleTextFonts)

	// Rich text.
	mux.HandleFunc("POST /api/documents/{id}/richtext/markdown", h.handleRichMarkdown)
	mux.HandleFunc("POST /api/documents/{id}/richtext/textbox", h.handleRichTextBox)
	mux.HandleFunc("POST /api/documents/{id}/richtext/multifont", h.handleRichMultiFont)

	// Navigation: outline and links.
	mux.HandleFunc("GET /api/documents/{id}/toc", h.handleTOCGet)
	mux.HandleFunc("PUT /api/documents/{id}/toc", h.handleTOCSet)
	mux.HandleFunc("POST /api/documents/{id}/toc/from-headers", h.handleTOCFromHeaders)
	mux.HandleFunc("GET /api/documents/{id}/bookmarks", h.handleBookmarksForPage)
	mux.HandleFunc("POST /api/documents/{id}/bookmarks", h.handleBookmarkAdd)
	mux.HandleFunc("PATCH /api/documents/{id}/bookmarks/{index}", h.handleBookmarkUpdate)
	mux.HandleFunc("DELETE /api/documents/{id}/bookmarks/{index}", h.handleBookmarkDelete)
	mux.HandleFunc("GET /api/documents/{id}/links", h.handleLinksList)
	mux.HandleFunc("POST /api/documents/{id}/links", h.handleLinkAdd)
	mux.HandleFunc("DELETE /api/documents/{id}/links", h.handleLinkRemove)

	// Annotations.
	mux.HandleFunc("GET /api/documents/{id}/annotations", h.handleAnnotationsList)
	mux.HandleFunc("POST /api/documents/{id}/annotations/polygon", h.handleAnnotationPolygon)
	mux.HandleFunc("POST /api/documents/{id}/annotations/polyline", h.handleAnnotationPolyline)
	mux.HandleFunc("POST /api/documents/{id}/annotations/highlight", h.handleAnnotationHighlight)
	mux.HandleFunc("POST /api/documents/{id}/annotations/stamp", h.handleAnnotationStamp)
	mux.HandleFunc("POST /api/documents/{id}/annotations/note", h.handleAnnotationNote)
	mux.HandleFunc("PATCH /api/documents/{id}/annotations/{index}", h.handleAnnotationAppearance)
	mux.HandleFunc("DELETE /api/documents/{id}/annotations/{index}", h.handleAnnotationDelete)
	mux.HandleFunc("POST /api/documents/{id}/flatten-annotations", h.handleFlattenAnnotations)
	mux.HandleFunc("POST /api/documents/{id}/attachments", h.handleAttachFile)

	// Images.
	mux.HandleFunc("GET /api/documents/{id}/images", h.handleImagesList)
	mux.HandleFunc("POST /api/documents/{id}/images/insert", h.handleImageInsert)
	mux.HandleFunc("POST /api/documents/{id}/images/replace", h.handleImageReplace)
	mux.HandleFunc("GET /api/documents/{id}/images/{index}/extract", h.handleImageExtract)
	mux.HandleFunc("POST /api/documents/{id}/optimize", h.handleOptimize)

	// Metadata.
	mux.HandleFunc("GET /api/documents/{id}/metadata", h.handleMetadataGet)
	mux.HandleFunc("PATCH /api/documents/{id}/metadata", h.handleMetadataUpdate)

	// Innermost to outermost: API key, rate limit, request logging,
	// request ID, security headers, metrics.
	var handler http.Handler = mux
	handler = h.apiKeyMiddleware(handler)
	handler = h.rateLimitMiddleware(handler)
	handler = h.requestLogMiddleware(handler)
	handler = h.requestIDMiddleware(handler)
	handler = securityHeadersMiddleware(handler)
	handler = h.metricsMiddleware(handler)
	return handler
}

// handleHealth reports liveness and the current session count.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondData(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.coordinator.SessionCount(),
		"time":     time.Now().UTC(),
	})
}
