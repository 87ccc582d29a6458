package listing

import (
	"cmp"
	"slices"
	"strings"
)

var comparators = map[string]func(a, b Row) int{
	"id":            func(a, b Row) int { return cmp.Compare(a.ID, b.ID) },
	"company_name":  func(a, b Row) int { return strings.Compare(a.CompanyName, b.CompanyName) },
	"category":      func(a, b Row) int { return strings.Compare(a.Category, b.Category) },
	"activity":      func(a, b Row) int { return strings.Compare(a.Activity, b.Activity) },
	"employeecount": func(a, b Row) int { return cmp.Compare(a.EmployeeCount, b.EmployeeCount) },
	"traineecount":  func(a, b Row) int { return cmp.Compare(a.TraineeCount, b.TraineeCount) },
	"contactperson": func(a, b Row) int { return strings.Compare(a.ContactPerson, b.ContactPerson) },
	"email":         func(a, b Row) int { return strings.Compare(a.Email, b.Email) },
	"contactmobile": func(a, b Row) int { return strings.Compare(a.ContactMobile, b.ContactMobile) },
	"courses":       func(a, b Row) int { return strings.Compare(a.Courses, b.Courses) },
	"languages":     func(a, b Row) int { return strings.Compare(a.Languages, b.Languages) },
	"locations":     func(a, b Row) int { return strings.Compare(a.Locations, b.Locations) },
	"date_added":    func(a, b Row) int { return a.DateAdded.Compare(b.DateAdded) },
}

// IsSortable reports whether key is an accepted orderby value.
func IsSortable(key string) bool {
	_, ok := comparators[key]
	return ok
}

// Sort orders rows in place by the given key and direction. Equal keys
// keep ascending id order regardless of direction.
func Sort(rows []Row, orderBy, order string) {
	compare, ok := comparators[orderBy]
	if !ok {
		compare = comparators[DefaultOrderBy]
	}
	desc := order == OrderDesc

	slices.SortStableFunc(rows, func(a, b Row) int {
		c := compare(a, b)
		if desc {
			c = -c
		}
		if c == 0 {
			return cmp.Compare(a.ID, b.ID)
		}
		return c
	})
}
