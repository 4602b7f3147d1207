package preload

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"library3d/internal/httpx"
)

const maxDelay = 10 * time.Second

// AssetCache exposes model bytes already warmed into memory.
type AssetCache interface {
	Get(url string) ([]byte, bool)
}

type HTTPHandler struct {
	cache  *Cache
	assets AssetCache
}

func NewHTTPHandler(cache *Cache, assets AssetCache) *HTTPHandler {
	return &HTTPHandler{cache: cache, assets: assets}
}

type idParam struct {
	ID string `json:"id" validate:"required,asset_id"`
}

type scheduleParams struct {
	ID      string `json:"id" validate:"required,asset_id"`
	DelayMS int    `json:"delay_ms" validate:"min=0,max=10000"`
}

type statusResponse struct {
	ID        string `json:"id"`
	Status    Status `json:"status"`
	Scheduled bool   `json:"scheduled"`
	URL       string `json:"url,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Schedule handles POST /v1/preload/{id}
// @Summary Schedule a model preload
// @Description Debounced: a new request for the same id restarts the delay
// @Tags preload
// @Produce json
// @Param id path string true "Book ID"
// @Param delay_ms query int false "Debounce delay in milliseconds" default(500)
// @Success 202 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/preload/{id} [post]
func (h *HTTPHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	p := scheduleParams{ID: r.PathValue("id")}
	if raw := r.URL.Query().Get("delay_ms"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid preload request",
				[]httpx.ErrorDetail{{Field: "delay_ms", Message: "delay_ms must be an integer"}})
			return
		}
		p.DelayMS = v
	}
	if details := httpx.ValidateStruct(p); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid preload request", details)
		return
	}

	delay := min(time.Duration(p.DelayMS)*time.Millisecond, maxDelay)
	h.cache.SchedulePreload(p.ID, delay)

	httpx.JSONStatus(w, r, http.StatusAccepted, h.status(p.ID), nil)
}

// Cancel handles DELETE /v1/preload/{id}
// @Summary Cancel a scheduled preload
// @Tags preload
// @Param id path string true "Book ID"
// @Success 204
// @Router /v1/preload/{id} [delete]
func (h *HTTPHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	p := idParam{ID: r.PathValue("id")}
	if details := httpx.ValidateStruct(p); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid preload request", details)
		return
	}
	h.cache.CancelPreload(p.ID)
	httpx.JSONSuccessNoContent(w)
}

// Status handles GET /v1/preload/{id}
// @Summary Get preload status
// @Tags preload
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/preload/{id} [get]
func (h *HTTPHandler) Status(w http.ResponseWriter, r *http.Request) {
	p := idParam{ID: r.PathValue("id")}
	if details := httpx.ValidateStruct(p); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid preload request", details)
		return
	}
	httpx.JSONSuccess(w, r, h.status(p.ID), nil)
}

func (h *HTTPHandler) status(id string) statusResponse {
	resp := statusResponse{
		ID:        id,
		Status:    h.cache.Status(id),
		Scheduled: h.cache.Scheduled(id),
	}
	if e, ok := h.cache.Entry(id); ok {
		resp.URL = e.URL
		resp.Error = e.Err
	}
	return resp
}

// Model handles GET /v1/books/{id}/model
// @Summary Fetch a book's 3D model
// @Description Serves warmed bytes when available, otherwise redirects to the signed asset URL
// @Tags preload
// @Produce octet-stream
// @Param id path string true "Book ID"
// @Success 200
// @Success 307
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{id}/model [get]
func (h *HTTPHandler) Model(w http.ResponseWriter, r *http.Request) {
	p := idParam{ID: r.PathValue("id")}
	if details := httpx.ValidateStruct(p); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid model request", details)
		return
	}

	h.cache.ResolveAndWarm(r.Context(), p.ID)
	if r.Context().Err() != nil {
		return
	}

	e, ok := h.cache.Entry(p.ID)
	if !ok || e.URL == "" {
		message := "Model not available"
		if ok && e.Err != "" {
			message = e.Err
		}
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", message, nil)
		return
	}

	if h.assets != nil {
		if data, ok := h.assets.Get(e.URL); ok {
			w.Header().Set("Content-Type", "model/gltf-binary")
			http.ServeContent(w, r, p.ID+".glb", e.Timestamp, bytes.NewReader(data))
			return
		}
	}
	http.Redirect(w, r, e.URL, http.StatusTemporaryRedirect)
}

// Register mounts the preload routes. Every route can trigger outbound
// resolver and warm-up fetches, so all of them go through protect.
func (h *HTTPHandler) Register(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("/v1/preload/{id}", protect(httpx.MethodMux(map[string]http.Handler{
		http.MethodPost:   http.HandlerFunc(h.Schedule),
		http.MethodDelete: http.HandlerFunc(h.Cancel),
		http.MethodGet:    http.HandlerFunc(h.Status),
	})))
	mux.Handle("GET /v1/books/{id}/model", protect(http.HandlerFunc(h.Model)))
}
