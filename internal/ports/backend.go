package ports

import (
	"context"

	"github.com/tejinder0007/real-estate-frontend/internal/domain/booking"
	"github.com/tejinder0007/real-estate-frontend/internal/domain/model"
)

// CatalogAPI reads and manages property listings. Write operations require an
// admin credential; the backend enforces it.
type CatalogAPI interface {
	ListProperties(ctx context.Context) ([]model.Property, error)
	GetProperty(ctx context.Context, id string) (model.Property, error)
	CreateProperty(ctx context.Context, credential string, req model.CreatePropertyRequest) (model.Property, error)
	// DeleteProperty returns the backend's confirmation message.
	DeleteProperty(ctx context.Context, credential, id string) (string, error)
}

// BookingAPI creates appointments and confirms gateway payments.
type BookingAPI interface {
	Book(ctx context.Context, credential string, req booking.Request) (booking.Initiation, error)
	VerifyPayment(ctx context.Context, credential string, v booking.Verification) error
}

// AdminAPI lists the records shown on the admin dashboard.
type AdminAPI interface {
	ListAppointments(ctx context.Context, credential string) ([]model.Appointment, error)
	ListUsers(ctx context.Context, credential string) ([]model.User, error)
	Stats(ctx context.Context, credential string) (model.AdminStats, error)
}
