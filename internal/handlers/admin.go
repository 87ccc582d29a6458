package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/training-calculator/internal/auth"
	"github.com/gdg-garage/training-calculator/internal/listing"
	"github.com/gdg-garage/training-calculator/internal/render"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExportAction is the bulk action slug that downloads the list as CSV.
const ExportAction = "export"

type AdminHandler struct {
	db          *gorm.DB
	renderer    *render.Renderer
	authHandler *auth.AuthHandler
	perPage     int
	basePath    string
	logger      *zap.Logger
	now         func() time.Time
}

func NewAdminHandler(db *gorm.DB, renderer *render.Renderer, authHandler *auth.AuthHandler, perPage int, basePath string, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		db:          db,
		renderer:    renderer,
		authHandler: authHandler,
		perPage:     perPage,
		basePath:    basePath,
		logger:      logger,
		now:         time.Now,
	}
}

func isExport(q url.Values) bool {
	return q.Get("action") == ExportAction || q.Get("action2") == ExportAction
}

// HandleList renders the registrations table, or the CSV export when the
// export bulk action was submitted.
func (h *AdminHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params, err := listing.ParseParams(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if isExport(q) {
		h.export(w, r, params)
		return
	}

	page, err := listing.List(r.Context(), h.db, params, h.perPage)
	if err != nil {
		h.logger.Error("Failed to list registrations", zap.Error(err))
		http.Error(w, "Failed to list registrations", http.StatusInternalServerError)
		return
	}
	params.Paged = page.CurrentPage

	var buf bytes.Buffer
	if err := h.renderer.AdminTable(&buf, h.basePath, params, page); err != nil {
		h.logger.Error("Failed to render registrations", zap.Error(err))
		http.Error(w, "Failed to render registrations", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (h *AdminHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	params, err := listing.ParseParams(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.export(w, r, params)
}

// export writes every row matching the filter and search, ignoring paging.
func (h *AdminHandler) export(w http.ResponseWriter, r *http.Request, params listing.Params) {
	rows, err := listing.Fetch(r.Context(), h.db, params)
	if err != nil {
		h.logger.Error("Failed to export registrations", zap.Error(err))
		http.Error(w, "Failed to export registrations", http.StatusInternalServerError)
		return
	}
	listing.Sort(rows, params.OrderBy, params.Order)

	var buf bytes.Buffer
	if err := listing.WriteCSV(&buf, rows); err != nil {
		h.logger.Error("Failed to write CSV", zap.Error(err))
		http.Error(w, "Failed to export registrations", http.StatusInternalServerError)
		return
	}

	adminID, _ := r.Context().Value(auth.AdminIDKey).(uint)
	h.logger.Info("Registrations exported", zap.Int("rows", len(rows)), zap.Uint("admin_id", adminID))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", listing.ExportFilename(h.now())))
	w.Write(buf.Bytes())
}

type ListRegistrationsInput struct {
	auth.AuthInput
	Percentage string `query:"percentage" doc:"Only rows with this stored percentage (10 = A, 20 = B)"`
	Search     string `query:"s" doc:"Substring searched across all text columns"`
	OrderBy    string `query:"orderby" doc:"Sort key" default:"id"`
	Order      string `query:"order" doc:"Sort direction, asc or desc in any case" default:"asc"`
	Paged      int    `query:"paged" doc:"1-based page number" default:"1"`
}

type ListRegistrationsOutput struct {
	Body *listing.Page
}

func (h *AdminHandler) HandleListJSON(ctx context.Context, input *ListRegistrationsInput) (*ListRegistrationsOutput, error) {
	if _, err := h.authHandler.Authorize(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("percentage", input.Percentage)
	q.Set("s", input.Search)
	q.Set("orderby", input.OrderBy)
	q.Set("order", input.Order)
	q.Set("paged", strconv.Itoa(input.Paged))

	params, err := listing.ParseParams(q)
	if errors.Is(err, listing.ErrInvalidPercentage) {
		return nil, huma.Error400BadRequest(err.Error())
	}
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid query")
	}

	page, err := listing.List(ctx, h.db, params, h.perPage)
	if err != nil {
		h.logger.Error("Failed to list registrations", zap.Error(err))
		return nil, huma.Error500InternalServerError("Failed to list registrations")
	}
	return &ListRegistrationsOutput{Body: page}, nil
}
