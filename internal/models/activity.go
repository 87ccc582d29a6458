package models

// Activity is the business type a company picks on the registration form.
type Activity struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	NameEn string `json:"name_en" gorm:"column:name_en"`
	NameAr string `json:"name_ar" gorm:"column:name_ar"`
}

func (Activity) TableName() string {
	return "company_activities"
}

// DefaultActivities seeds an empty company_activities table.
var DefaultActivities = []Activity{
	{NameEn: "Banking & Finance", NameAr: "البنوك والتمويل"},
	{NameEn: "Construction", NameAr: "البناء والتشييد"},
	{NameEn: "Education", NameAr: "التعليم"},
	{NameEn: "Healthcare", NameAr: "الرعاية الصحية"},
	{NameEn: "Hospitality & Tourism", NameAr: "الضيافة والسياحة"},
	{NameEn: "Industry & Manufacturing", NameAr: "الصناعة"},
	{NameEn: "Information Technology", NameAr: "تقنية المعلومات"},
	{NameEn: "Oil & Gas", NameAr: "النفط والغاز"},
	{NameEn: "Retail & Trade", NameAr: "التجزئة والتجارة"},
	{NameEn: "Transport & Logistics", NameAr: "النقل والخدمات اللوجستية"},
	{NameEn: "Other", NameAr: "أخرى"},
}
