package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/tendant/url-proxy/pkg/urlproxy"
)

const (
	ParamTenant    = "tenant"
	ParamObjectKey = "objectkey"
)

// ProxyHandler redirects tenant/object key requests to signed object store URLs
type ProxyHandler struct {
	signer urlproxy.URLSigner
	logger *slog.Logger
}

func NewProxyHandler(signer urlproxy.URLSigner, logger *slog.Logger) *ProxyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProxyHandler{
		signer: signer,
		logger: logger,
	}
}

// Routes returns the router serving the health check and the catch-all proxy route
func (h *ProxyHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(h.logger))
	r.Use(RecoveryMiddleware(h.logger))

	r.Get("/health", h.Health)

	// Any path is accepted; only the query parameters drive the response.
	r.Get("/", h.Proxy)
	r.Get("/*", h.Proxy)

	return r
}

// Health reports liveness
func (h *ProxyHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// Proxy validates the request and redirects to a freshly signed URL
func (h *ProxyHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	tenant := query.Get(ParamTenant)
	objectKey := query.Get(ParamObjectKey)
	path := chi.URLParam(r, "*")

	logger := h.logger.With("request_id", RequestIDFromContext(r.Context()))
	logger.Info("Incoming request", "tenant", tenant, "objectkey", objectKey, "path", path)

	if err := validateParams(tenant, objectKey); err != nil {
		logger.Warn("Missing parameter", "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": err.Error()})
		return
	}

	signedURL, err := h.signer.SignedGetURL(r.Context(), objectKey)
	if err != nil {
		h.writeSignError(w, r, logger, tenant, objectKey, err)
		return
	}

	logger.Info("Signed URL generated", "tenant", tenant, "objectkey", objectKey, "url_generated", true)
	http.Redirect(w, r, signedURL, http.StatusFound)
}

func validateParams(tenant, objectKey string) error {
	if tenant == "" {
		return &urlproxy.MissingParameterError{Name: ParamTenant}
	}
	if objectKey == "" {
		return &urlproxy.MissingParameterError{Name: ParamObjectKey}
	}
	return nil
}

// writeSignError translates a signing failure into a 500 JSON response
func (h *ProxyHandler) writeSignError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, tenant, objectKey string, err error) {
	if storageErr, ok := urlproxy.AsStorageError(err); ok {
		logger.Error("AWS error",
			"tenant", tenant,
			"objectkey", objectKey,
			"error_code", storageErr.Code,
			"error_message", storageErr.Message,
		)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{
			"error":   "Failed to generate S3 URL",
			"details": storageErr.Message,
		})
		return
	}

	logger.Error("Unexpected error", "tenant", tenant, "objectkey", objectKey, "error", err)
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, map[string]string{
		"error":   "Internal server error",
		"details": err.Error(),
	})
}
