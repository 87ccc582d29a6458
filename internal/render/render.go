package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"

	"github.com/gdg-garage/training-calculator/internal/listing"
	"github.com/gdg-garage/training-calculator/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

type Renderer struct {
	tmpl *template.Template
}

func New() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// WidgetData feeds the registration form.
type WidgetData struct {
	AjaxURL        string
	Activities     []models.Activity
	LoadingMessage string
	SuccessMessage string
}

func (r *Renderer) Widget(w io.Writer, data WidgetData) error {
	if data.LoadingMessage == "" {
		data.LoadingMessage = "Sending your request, please wait..."
	}
	if data.SuccessMessage == "" {
		data.SuccessMessage = "Thank you! Your registration was received"
	}
	return r.tmpl.ExecuteTemplate(w, "widget", data)
}

// WidgetHTML renders the widget into a string for shortcode expansion.
func (r *Renderer) WidgetHTML(data WidgetData) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.Widget(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Page wraps already expanded content in a standalone document. The
// content is trusted: it comes from the operator's landing page file.
func (r *Renderer) Page(w io.Writer, title string, content string) error {
	return r.tmpl.ExecuteTemplate(w, "page", struct {
		Title   string
		Content template.HTML
	}{Title: title, Content: template.HTML(content)})
}

type ViewLink struct {
	Key     string
	Label   string
	URL     string
	Current bool
}

type HeaderCell struct {
	Key    string
	Title  string
	URL    string
	Sorted bool
	Order  string
}

type BulkAction struct {
	Key   string
	Label string
}

type Pagination struct {
	First, Prev, Next, Last string
}

var BulkActions = []BulkAction{
	{Key: "export", Label: "Export All"},
}

type adminData struct {
	BasePath    string
	Params      listing.Params
	Percentage  string
	Views       []ViewLink
	Headers     []HeaderCell
	BulkActions []BulkAction
	Page        *listing.Page
	Pagination  Pagination
}

// AdminTable renders the registrations list page for the given request
// state. basePath is the page URL without query string.
func (r *Renderer) AdminTable(w io.Writer, basePath string, p listing.Params, page *listing.Page) error {
	data := adminData{
		BasePath:    basePath,
		Params:      p,
		Views:       Views(basePath, p),
		Headers:     Headers(basePath, p),
		BulkActions: BulkActions,
		Page:        page,
		Pagination:  pages(basePath, p, page),
	}
	if p.Percentage != nil {
		data.Percentage = strconv.Itoa(*p.Percentage)
	}
	return r.tmpl.ExecuteTemplate(w, "admin", data)
}

func link(basePath string, v url.Values) string {
	if len(v) == 0 {
		return basePath
	}
	return basePath + "?" + v.Encode()
}

// Views builds the All / Category A-C filter links. Each keeps the other
// query parameters but drops percentage and the page number.
func Views(basePath string, p listing.Params) []ViewLink {
	base := p
	base.Percentage = nil
	base.Paged = 1

	views := []ViewLink{{Key: "all", Label: "All", URL: link(basePath, base.Values()), Current: p.Percentage == nil}}
	for _, c := range []struct {
		key, label string
		pct        int
	}{
		{"cat-a", "Category A", models.PercentageCategoryA},
		{"cat-b", "Category B", models.PercentageCategoryB},
		{"cat-c", "Category C", models.PercentageCategoryC},
	} {
		q := base
		pct := c.pct
		q.Percentage = &pct
		views = append(views, ViewLink{
			Key:     c.key,
			Label:   c.label,
			URL:     link(basePath, q.Values()),
			Current: p.Percentage != nil && *p.Percentage == c.pct,
		})
	}
	return views
}

// Headers builds the sortable column headers. Clicking the current sort
// column flips its direction.
func Headers(basePath string, p listing.Params) []HeaderCell {
	headers := make([]HeaderCell, len(listing.Columns))
	for i, c := range listing.Columns {
		q := p
		q.Paged = 1
		q.OrderBy = c.SortKey
		q.Order = listing.OrderAsc
		sorted := p.OrderBy == c.SortKey
		if sorted && p.Order == listing.OrderAsc {
			q.Order = listing.OrderDesc
		}
		headers[i] = HeaderCell{
			Key:    c.Key,
			Title:  c.Title,
			URL:    link(basePath, q.Values()),
			Sorted: sorted,
			Order:  p.Order,
		}
	}
	return headers
}

func pages(basePath string, p listing.Params, page *listing.Page) Pagination {
	at := func(n int) string {
		q := p
		q.Paged = n
		return link(basePath, q.Values())
	}

	var pg Pagination
	if page.CurrentPage > 1 {
		pg.First = at(1)
		pg.Prev = at(page.CurrentPage - 1)
	}
	if page.CurrentPage < page.TotalPages {
		pg.Next = at(page.CurrentPage + 1)
		pg.Last = at(page.TotalPages)
	}
	return pg
}
