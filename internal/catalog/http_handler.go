package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"library3d/internal/httpx"
)

type HTTPHandler struct {
	svc    *Service
	logger logrus.FieldLogger
}

func NewHTTPHandler(svc *Service, logger logrus.FieldLogger) *HTTPHandler {
	return &HTTPHandler{svc: svc, logger: logger}
}

type listParams struct {
	Q            string `query:"q"`
	Category     string `query:"category"`
	Author       string `query:"author"`
	Availability string `query:"availability" validate:"omitempty,oneof=all available unavailable"`
	YearMin      *int   `query:"year_min"`
	YearMax      *int   `query:"year_max"`
	Sort         string `query:"sort" validate:"omitempty,oneof=title author published_year category"`
	Order        string `query:"order" validate:"omitempty,oneof=asc desc"`
	Page         int    `query:"page" validate:"min=1"`
	PageSize     int    `query:"page_size" validate:"min=1,max=100"`
}

func (p listParams) spec() QuerySpec {
	spec := DefaultQuerySpec()
	spec.Search = p.Q
	spec.Filters.Category = p.Category
	spec.Filters.Author = p.Author
	if p.Availability != "" {
		spec.Filters.Availability = Availability(p.Availability)
	}
	spec.Filters.PublishedYear = YearRange{Min: p.YearMin, Max: p.YearMax}
	if p.Sort != "" {
		spec.Sort.Field = SortField(p.Sort)
	}
	if p.Order != "" {
		spec.Sort.Direction = SortDirection(p.Order)
	}
	spec.Page = p.Page
	spec.PageSize = p.PageSize
	return spec
}

func parseListParams(r *http.Request) (listParams, []httpx.ErrorDetail) {
	query := r.URL.Query()
	p := listParams{
		Q:            query.Get("q"),
		Category:     query.Get("category"),
		Author:       query.Get("author"),
		Availability: query.Get("availability"),
		Sort:         query.Get("sort"),
		Order:        query.Get("order"),
		Page:         1,
		PageSize:     DefaultPageSize,
	}

	var details []httpx.ErrorDetail
	intParam := func(name string, dst *int) {
		raw := query.Get(name)
		if raw == "" {
			return
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			details = append(details, httpx.ErrorDetail{Field: name, Message: name + " must be an integer"})
			return
		}
		*dst = v
	}
	intParam("page", &p.Page)
	intParam("page_size", &p.PageSize)

	var yearMin, yearMax int
	if query.Get("year_min") != "" {
		intParam("year_min", &yearMin)
		p.YearMin = Year(yearMin)
	}
	if query.Get("year_max") != "" {
		intParam("year_max", &yearMax)
		p.YearMax = Year(yearMax)
	}

	if len(details) > 0 {
		return p, details
	}
	return p, httpx.ValidateStruct(p)
}

// List handles GET /v1/catalog/books
// @Summary Query the catalog
// @Description Search, filter, sort and paginate the book collection
// @Tags catalog
// @Produce json
// @Param q query string false "Matches title, author or ISBN"
// @Param category query string false "Exact category"
// @Param author query string false "Author substring"
// @Param availability query string false "all, available or unavailable"
// @Param year_min query int false "Earliest published year"
// @Param year_max query int false "Latest published year"
// @Param sort query string false "title, author, published_year or category" default(title)
// @Param order query string false "asc or desc" default(asc)
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page" default(12)
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /v1/catalog/books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	params, details := parseListParams(r)
	if len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid catalog query", details)
		return
	}

	spec := params.spec()
	page, err := h.svc.Search(r.Context(), spec)
	if err != nil {
		h.logger.WithError(err).Error("catalog query failed")
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, page.Books, map[string]any{
		"page":        spec.Page,
		"page_size":   spec.PageSize,
		"total":       page.Total,
		"total_pages": page.TotalPages,
	})
}

// Get handles GET /v1/catalog/books/{id}
// @Summary Get a catalog book
// @Tags catalog
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/catalog/books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Book ID is required", nil)
		return
	}

	book, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found in catalog", nil)
			return
		}
		h.logger.WithError(err).WithField("book_id", id).Error("get book failed")
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, book, nil)
}

// Categories handles GET /v1/catalog/categories
// @Summary List categories
// @Tags catalog
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/catalog/categories [get]
func (h *HTTPHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Categories(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("list categories failed")
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, categories, nil)
}

// Register mounts the catalog routes on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/catalog/books", h.List)
	mux.HandleFunc("GET /v1/catalog/books/{id}", h.Get)
	mux.HandleFunc("GET /v1/catalog/categories", h.Categories)
}
