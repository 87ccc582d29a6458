package models

import (
	"time"
)

// Percentage values that map to a named category. Anything else is C.
const (
	PercentageCategoryA = 10
	PercentageCategoryB = 20
	PercentageCategoryC = 30
)

type RegistrationFields struct {
	Name          string `json:"company_name" gorm:"column:name"`
	ActivityID    uint   `json:"activity_id" gorm:"column:activity;index"`
	EmployeeCount int    `json:"employee_count" gorm:"column:employeecount"`
	TraineeCount  int    `json:"trainee_count" gorm:"column:traineecount"`
	ContactPerson string `json:"contact_person" gorm:"column:contactperson"`
	Email         string `json:"email" gorm:"column:email"`
	ContactMobile string `json:"contact_mobile" gorm:"column:contactmobile"`
	Courses       string `json:"courses" gorm:"column:courses"`
	Languages     string `json:"languages" gorm:"column:languages"`
	Locations     string `json:"locations" gorm:"column:locations"`
	Percentage    int    `json:"percentage" gorm:"column:percentage;index"`
}

// Registration is one submitted training request. Rows are insert-only.
type Registration struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	DateAdded          time.Time `json:"date_added" gorm:"column:date_added;autoCreateTime"`
	RegistrationFields `gorm:"embedded"`
}

func (Registration) TableName() string {
	return "registrations"
}

// Category maps a stored percentage to its display bucket.
func Category(percentage int) string {
	switch percentage {
	case PercentageCategoryA:
		return "A"
	case PercentageCategoryB:
		return "B"
	default:
		return "C"
	}
}
