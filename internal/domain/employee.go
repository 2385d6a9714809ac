package domain

import "time"

// Employee is a directory record.
type Employee struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Age        *int      `json:"age"`
	Class      *string   `json:"class"`
	Subjects   []string  `json:"subjects"`
	Attendance *float64  `json:"attendance"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// EmployeeFields carries employee attributes for create and partial update.
// On update, nil fields are left untouched.
type EmployeeFields struct {
	Name       *string
	Age        *int
	Class      *string
	Subjects   []string
	Attendance *float64
}

// PageInfo describes where a page sits within the full result set.
type PageInfo struct {
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	TotalPages      int  `json:"totalPages"`
	TotalCount      int  `json:"totalCount"`
	CurrentPage     int  `json:"currentPage"`
}

// EmployeePage is one page of a listing.
type EmployeePage struct {
	Employees []Employee `json:"employees"`
	PageInfo  PageInfo   `json:"pageInfo"`
}
