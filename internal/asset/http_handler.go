package asset

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"library3d/internal/catalog"
	"library3d/internal/httpx"
)

// BookFinder is the part of the catalog the handler needs.
type BookFinder interface {
	GetByID(ctx context.Context, id string) (catalog.Book, error)
}

type HTTPHandler struct {
	store  Store
	books  BookFinder
	logger logrus.FieldLogger
}

func NewHTTPHandler(store Store, books BookFinder, logger logrus.FieldLogger) *HTTPHandler {
	return &HTTPHandler{store: store, books: books, logger: logger}
}

type URLResponse struct {
	URL        string `json:"url"`
	GLTFURL    string `json:"gltf_url,omitempty"`
	ExpiresIn  int    `json:"expires_in"`
	AssetType  Kind   `json:"asset_type"`
	PageNumber int    `json:"page_number,omitempty"`
}

type UploadRequest struct {
	ContentType string `json:"content_type" validate:"required"`
	PageNumber  int    `json:"page_number" validate:"omitempty,min=1,max=100"`
}

type UploadResponse struct {
	UploadURL       string            `json:"upload_url"`
	Key             string            `json:"key"`
	AssetType       Kind              `json:"asset_type"`
	ContentType     string            `json:"content_type"`
	MaxSizeMB       int64             `json:"max_size_mb"`
	ExpiresIn       int               `json:"expires_in"`
	PageNumber      int               `json:"page_number,omitempty"`
	RequiredHeaders map[string]string `json:"required_headers"`
}

type refParams struct {
	BookID string `json:"id" validate:"required,asset_id"`
	Kind   string `json:"kind" validate:"required,oneof=cover model page"`
}

// Get handles GET /v1/books/{id}/assets/{kind}
// @Summary Get a signed asset URL
// @Tags assets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Book ID"
// @Param kind path string true "cover or model"
// @Success 200 {object} URLResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{id}/assets/{kind} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	p := refParams{BookID: r.PathValue("id"), Kind: r.PathValue("kind")}
	if details := httpx.ValidateStruct(p); len(details) > 0 || p.Kind == string(KindPage) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Unknown asset", details)
		return
	}
	h.sign(w, r, Ref{Kind: Kind(p.Kind), BookID: p.BookID})
}

// GetPage handles GET /v1/books/{id}/assets/pages/{n}
// @Summary Get a signed page texture URL
// @Tags assets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Book ID"
// @Param n path int true "Page number (1-100)"
// @Success 200 {object} URLResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{id}/assets/pages/{n} [get]
func (h *HTTPHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.PathValue("n"))
	ref := Ref{Kind: KindPage, BookID: r.PathValue("id"), Page: page}
	if err != nil || ref.Validate() != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid page number", nil)
		return
	}
	if details := httpx.ValidateStruct(refParams{BookID: ref.BookID, Kind: string(ref.Kind)}); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid book id", details)
		return
	}
	h.sign(w, r, ref)
}

func (h *HTTPHandler) sign(w http.ResponseWriter, r *http.Request, ref Ref) {
	if !h.bookExists(w, r, ref.BookID) {
		return
	}

	url, err := h.store.SignedURL(r.Context(), ref)
	if err != nil {
		if errors.Is(err, ErrNoAsset) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "No "+string(ref.Kind)+" available for this book", nil)
			return
		}
		h.logger.WithError(err).WithFields(logrus.Fields{"book_id": ref.BookID, "asset_type": ref.Kind}).Error("sign asset url failed")
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate asset URL", nil)
		return
	}

	resp := URLResponse{
		URL:       url,
		ExpiresIn: int(h.store.TTL().Seconds()),
		AssetType: ref.Kind,
	}
	if ref.Kind == KindModel {
		resp.GLTFURL = url
	}
	if ref.Kind == KindPage {
		resp.PageNumber = ref.Page
	}
	httpx.JSONSuccess(w, r, resp, nil)
}

// Upload handles POST /v1/books/{id}/assets/upload/{kind}
// @Summary Get a presigned upload URL
// @Description Admin only. The client must PUT the file with the returned headers.
// @Tags assets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Book ID"
// @Param kind path string true "cover, model or page"
// @Param request body UploadRequest true "Upload request"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /v1/books/{id}/assets/upload/{kind} [post]
func (h *HTTPHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if p, _ := httpx.PrincipalFrom(r); !p.IsAdmin() {
		httpx.JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "Admin role required", nil)
		return
	}

	p := refParams{BookID: r.PathValue("id"), Kind: r.PathValue("kind")}
	if details := httpx.ValidateStruct(p); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid asset reference", details)
		return
	}

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid upload request", details)
		return
	}

	ref := Ref{Kind: Kind(p.Kind), BookID: p.BookID}
	if ref.Kind == KindPage {
		ref.Page = max(req.PageNumber, MinPage)
	}
	rule, _ := RuleFor(ref.Kind)
	if !rule.Allows(req.ContentType) {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid content type for "+string(ref.Kind),
			[]httpx.ErrorDetail{{Field: "content_type", Message: "content_type must be one of the allowed types"}})
		return
	}
	if !h.bookExists(w, r, ref.BookID) {
		return
	}

	url, err := h.store.UploadURL(r.Context(), ref)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{"book_id": ref.BookID, "asset_type": ref.Kind}).Error("sign upload url failed")
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate upload URL", nil)
		return
	}

	httpx.JSONSuccess(w, r, UploadResponse{
		UploadURL:   url,
		Key:         ref.Key(),
		AssetType:   ref.Kind,
		ContentType: req.ContentType,
		MaxSizeMB:   rule.MaxSizeMB,
		ExpiresIn:   int(h.store.TTL().Seconds()),
		PageNumber:  ref.Page,
		RequiredHeaders: map[string]string{
			"Content-Type": req.ContentType,
		},
	}, nil)
}

func (h *HTTPHandler) bookExists(w http.ResponseWriter, r *http.Request, id string) bool {
	if h.books == nil {
		return true
	}
	if _, err := h.books.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return false
		}
		h.logger.WithError(err).WithField("book_id", id).Error("book lookup failed")
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return false
	}
	return true
}

// Register mounts the asset routes behind protect.
func (h *HTTPHandler) Register(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("GET /v1/books/{id}/assets/pages/{n}", protect(http.HandlerFunc(h.GetPage)))
	mux.Handle("GET /v1/books/{id}/assets/{kind}", protect(http.HandlerFunc(h.Get)))
	mux.Handle("POST /v1/books/{id}/assets/upload/{kind}", protect(http.HandlerFunc(h.Upload)))
}
