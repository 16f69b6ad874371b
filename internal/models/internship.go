package models

import "time"

// Internship represents a posted internship opportunity.
type Internship struct {
	ID          string     `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	CompanyName string     `db:"company_name" json:"companyName"`
	Location    string     `db:"location" json:"location"`
	Description string     `db:"description" json:"description"`
	Slots       int        `db:"slots" json:"slots"`
	Deadline    *time.Time `db:"deadline" json:"deadline,omitempty"`
	IsOpen      bool       `db:"is_open" json:"isOpen"`
	CreatedBy   string     `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// InternshipFilter constrains listing queries.
type InternshipFilter struct {
	Search   string
	Location string
	OpenOnly bool
	Page     int
	PageSize int
}
