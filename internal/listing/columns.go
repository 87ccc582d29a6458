package listing

import (
	"strconv"
	"time"
)

// Column is one rendered column of the list table.
type Column struct {
	Key     string
	Title   string
	SortKey string
}

const DefaultOrderBy = "id"

const dateLayout = "2006-01-02 15:04:05"

var Columns = []Column{
	{Key: "company", Title: "Company", SortKey: "company_name"},
	{Key: "category", Title: "Category", SortKey: "category"},
	{Key: "activity", Title: "Activity", SortKey: "activity"},
	{Key: "employees", Title: "Employees", SortKey: "employeecount"},
	{Key: "trainees", Title: "Trainees", SortKey: "traineecount"},
	{Key: "contactperson", Title: "Contact Person", SortKey: "contactperson"},
	{Key: "email", Title: "Email", SortKey: "email"},
	{Key: "mobile", Title: "Mobile", SortKey: "contactmobile"},
	{Key: "courses", Title: "Courses", SortKey: "courses"},
	{Key: "langs", Title: "Languages", SortKey: "languages"},
	{Key: "locs", Title: "Locations", SortKey: "locations"},
	{Key: "dateadded", Title: "Date", SortKey: "date_added"},
}

// Row is a registration joined with its activity name and derived category.
type Row struct {
	ID            uint      `json:"id" gorm:"column:id"`
	CompanyName   string    `json:"company_name" gorm:"column:company_name"`
	Category      string    `json:"category" gorm:"column:category"`
	Activity      string    `json:"activity" gorm:"column:activity"`
	EmployeeCount int       `json:"employeecount" gorm:"column:employeecount"`
	TraineeCount  int       `json:"traineecount" gorm:"column:traineecount"`
	ContactPerson string    `json:"contactperson" gorm:"column:contactperson"`
	Email         string    `json:"email" gorm:"column:email"`
	ContactMobile string    `json:"contactmobile" gorm:"column:contactmobile"`
	Courses       string    `json:"courses" gorm:"column:courses"`
	Languages     string    `json:"languages" gorm:"column:languages"`
	Locations     string    `json:"locations" gorm:"column:locations"`
	DateAdded     time.Time `json:"date_added" gorm:"column:date_added"`
}

// Cell returns the plain-text value of the column with the given key.
func (r Row) Cell(key string) string {
	switch key {
	case "id":
		return strconv.FormatUint(uint64(r.ID), 10)
	case "company":
		return r.CompanyName
	case "category":
		return r.Category
	case "activity":
		return r.Activity
	case "employees":
		return strconv.Itoa(r.EmployeeCount)
	case "trainees":
		return strconv.Itoa(r.TraineeCount)
	case "contactperson":
		return r.ContactPerson
	case "email":
		return r.Email
	case "mobile":
		return r.ContactMobile
	case "courses":
		return r.Courses
	case "langs":
		return r.Languages
	case "locs":
		return r.Locations
	case "dateadded":
		return r.DateAdded.Format(dateLayout)
	}
	return ""
}
