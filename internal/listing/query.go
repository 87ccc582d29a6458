package listing

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const selectColumns = `registrations.id,
	registrations.name AS company_name,
	company_activities.name_en AS activity,
	registrations.employeecount,
	registrations.traineecount,
	registrations.contactperson,
	registrations.email,
	registrations.contactmobile,
	registrations.courses,
	registrations.languages,
	registrations.locations,
	registrations.date_added,
	CASE registrations.percentage WHEN 10 THEN 'A' WHEN 20 THEN 'B' ELSE 'C' END AS category`

var searchColumns = []string{
	"registrations.name",
	"company_activities.name_en",
	"CAST(registrations.employeecount AS TEXT)",
	"CAST(registrations.traineecount AS TEXT)",
	"registrations.contactperson",
	"registrations.email",
	"registrations.contactmobile",
	"registrations.courses",
	"registrations.languages",
	"registrations.locations",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Fetch returns every registration matching the percentage filter and
// search term. Ordering is left to Sort.
func Fetch(ctx context.Context, db *gorm.DB, p Params) ([]Row, error) {
	q := db.WithContext(ctx).
		Table("registrations").
		Select(selectColumns).
		Joins("INNER JOIN company_activities ON registrations.activity = company_activities.id")

	if p.Percentage != nil {
		q = q.Where("registrations.percentage = ?", *p.Percentage)
	}

	if p.Search != "" {
		pattern := "%" + likeEscaper.Replace(p.Search) + "%"
		clauses := make([]string, len(searchColumns))
		args := make([]interface{}, len(searchColumns))
		for i, col := range searchColumns {
			clauses[i] = col + ` LIKE ? ESCAPE '\'`
			args[i] = pattern
		}
		q = q.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}

	var rows []Row
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}
	return rows, nil
}

// List fetches, sorts and paginates in one step.
func List(ctx context.Context, db *gorm.DB, p Params, perPage int) (*Page, error) {
	rows, err := Fetch(ctx, db, p)
	if err != nil {
		return nil, err
	}
	Sort(rows, p.OrderBy, p.Order)
	return Paginate(rows, p.Paged, perPage), nil
}
