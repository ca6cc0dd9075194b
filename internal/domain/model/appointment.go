//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// AppointmentRef is the embedded summary the backend returns for related records.
type AppointmentRef struct {
	ID       string `json:"_id,omitempty"`
	Email    string `json:"email,omitempty"`
	Location string `json:"location,omitempty"`
}

// Appointment is a booked viewing as listed for admins.
type Appointment struct {
	ID            string          `json:"_id"`
	Property      *AppointmentRef `json:"property,omitempty"`
	User          *AppointmentRef `json:"user,omitempty"`
	Date          time.Time       `json:"date"`
	Fee           float64         `json:"fee"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	PaymentStatus string          `json:"paymentStatus,omitempty"`
}

// User is an account as listed for admins.
type User struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// DashboardStats are the aggregates computed by the backend.
type DashboardStats struct {
	TotalRevenue           float64 `json:"totalRevenue"`
	TotalUsers             int     `json:"totalUsers"`
	TotalAppointments      int     `json:"totalAppointments"`
	SuccessfulAppointments int     `json:"successfulAppointments"`
}

// AdminStats is the payload of the admin stats endpoint. PropertyStats maps a
// property ID to its appointment count.
type AdminStats struct {
	DashboardStats DashboardStats `json:"dashboardStats"`
	PropertyStats  map[string]int `json:"propertyStats,omitempty"`
}
