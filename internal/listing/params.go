package listing

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

var ErrInvalidPercentage = errors.New("percentage must be an integer")

// Params carries the query-string state of the admin list table.
type Params struct {
	Percentage *int
	Search     string
	OrderBy    string
	Order      string
	Paged      int
}

// ParseParams reads percentage, s, orderby, order and paged from q.
// Unknown sort keys and directions fall back to the defaults.
func ParseParams(q url.Values) (Params, error) {
	p := Params{
		Search:  strings.TrimSpace(q.Get("s")),
		OrderBy: DefaultOrderBy,
		Order:   OrderAsc,
		Paged:   1,
	}

	if raw := strings.TrimSpace(q.Get("percentage")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return p, ErrInvalidPercentage
		}
		p.Percentage = &v
	}

	if key := q.Get("orderby"); IsSortable(key) {
		p.OrderBy = key
	}

	if strings.EqualFold(q.Get("order"), OrderDesc) {
		p.Order = OrderDesc
	}

	if n, err := strconv.Atoi(q.Get("paged")); err == nil && n > 0 {
		p.Paged = n
	}

	return p, nil
}

// Values encodes p back to query parameters, omitting defaults.
func (p Params) Values() url.Values {
	v := url.Values{}
	if p.Percentage != nil {
		v.Set("percentage", strconv.Itoa(*p.Percentage))
	}
	if p.Search != "" {
		v.Set("s", p.Search)
	}
	if p.OrderBy != "" && p.OrderBy != DefaultOrderBy {
		v.Set("orderby", p.OrderBy)
	}
	if p.Order == OrderDesc {
		v.Set("order", OrderDesc)
	}
	if p.Paged > 1 {
		v.Set("paged", strconv.Itoa(p.Paged))
	}
	return v
}
