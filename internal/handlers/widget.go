package handlers

import (
	"bytes"
	"context"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/training-calculator/internal/models"
	"github.com/gdg-garage/training-calculator/internal/render"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultLandingPage = `<h1>Company Training Registration</h1>
[k-trainingcalculator]`

type WidgetHandler struct {
	db         *gorm.DB
	renderer   *render.Renderer
	shortcodes *render.Shortcodes
	ajaxURL    string
	landing    string
	logger     *zap.Logger
}

// NewWidgetHandler loads the landing page content from landingPath, or a
// default page when the path is empty.
func NewWidgetHandler(db *gorm.DB, renderer *render.Renderer, ajaxURL, landingPath string, logger *zap.Logger) (*WidgetHandler, error) {
	landing := defaultLandingPage
	if landingPath != "" {
		content, err := os.ReadFile(landingPath)
		if err != nil {
			return nil, err
		}
		landing = string(content)
	}

	h := &WidgetHandler{
		db:         db,
		renderer:   renderer,
		shortcodes: render.NewShortcodes(),
		ajaxURL:    ajaxURL,
		landing:    landing,
		logger:     logger,
	}
	h.shortcodes.Register(render.WidgetShortcode, h.widgetShortcode)
	return h, nil
}

func (h *WidgetHandler) activities(ctx context.Context) ([]models.Activity, error) {
	var activities []models.Activity
	err := h.db.WithContext(ctx).Order("name_en asc").Find(&activities).Error
	return activities, err
}

func (h *WidgetHandler) widgetData(ctx context.Context) (render.WidgetData, error) {
	activities, err := h.activities(ctx)
	if err != nil {
		return render.WidgetData{}, err
	}
	return render.WidgetData{AjaxURL: h.ajaxURL, Activities: activities}, nil
}

func (h *WidgetHandler) widgetShortcode(ctx context.Context, _ map[string]string) (string, error) {
	data, err := h.widgetData(ctx)
	if err != nil {
		return "", err
	}
	html, err := h.renderer.WidgetHTML(data)
	return string(html), err
}

func (h *WidgetHandler) HandleWidget(w http.ResponseWriter, r *http.Request) {
	data, err := h.widgetData(r.Context())
	if err != nil {
		h.logger.Error("Failed to load activities", zap.Error(err))
		http.Error(w, "Failed to load activities", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Widget(&buf, data); err != nil {
		h.logger.Error("Failed to render widget", zap.Error(err))
		http.Error(w, "Failed to render widget", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// HandlePage serves the landing page with shortcodes expanded.
func (h *WidgetHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	content, err := h.shortcodes.Expand(r.Context(), h.landing)
	if err != nil {
		h.logger.Error("Failed to expand shortcodes", zap.Error(err))
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Page(&buf, "Company Training Registration", content); err != nil {
		h.logger.Error("Failed to render page", zap.Error(err))
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

type ListActivitiesOutput struct {
	Body []models.Activity
}

func (h *WidgetHandler) HandleActivities(ctx context.Context, _ *struct{}) (*ListActivitiesOutput, error) {
	activities, err := h.activities(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list activities")
	}
	return &ListActivitiesOutput{Body: activities}, nil
}
