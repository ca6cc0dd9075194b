// Package mocks provides mock implementations for testing the portal services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the backend ports.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	api := mocks.NewMockBookingAPI(ctrl)
//	api.EXPECT().Book(gomock.Any(), "token", gomock.Any()).Return(booking.Initiation{PayOnVisit: true}, nil)
package mocks

// Generate mocks for the backend REST ports from internal/ports.
// This creates MockBookingAPI (Book, VerifyPayment), MockCatalogAPI (ListProperties, GetProperty,
// CreateProperty, DeleteProperty) and MockAdminAPI (ListAppointments, ListUsers, Stats).
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=backend_mock.go github.com/tejinder0007/real-estate-frontend/internal/ports BookingAPI,CatalogAPI,AdminAPI
