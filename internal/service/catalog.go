package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	domainauth "github.com/tejinder0007/real-estate-frontend/internal/domain/auth"
	"github.com/tejinder0007/real-estate-frontend/internal/domain/booking"
	"github.com/tejinder0007/real-estate-frontend/internal/domain/model"
	apperrors "github.com/tejinder0007/real-estate-frontend/internal/errors"
	"github.com/tejinder0007/real-estate-frontend/internal/ports"
	"github.com/tejinder0007/real-estate-frontend/internal/util"
)

// CatalogServiceOptions groups dependencies for CatalogService.
type CatalogServiceOptions struct {
	Catalog ports.CatalogAPI
	Admin   ports.AdminAPI
	// AppointmentFee is the fixed viewing fee in rupees.
	AppointmentFee int64
	Logger         *zap.Logger
}

// CatalogService builds the listing, detail and dashboard view models and
// passes admin catalog changes through to the backend.
type CatalogService struct {
	catalog ports.CatalogAPI
	admin   ports.AdminAPI
	fee     int64
	logger  *zap.Logger
}

// NewCatalogService constructs a new CatalogService.
func NewCatalogService(opts CatalogServiceOptions) *CatalogService {
	if opts.Catalog == nil {
		panic("CatalogAPI is required")
	}
	if opts.Admin == nil {
		panic("AdminAPI is required")
	}
	if opts.AppointmentFee <= 0 {
		opts.AppointmentFee = 1000
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		catalog: opts.Catalog,
		admin:   opts.Admin,
		fee:     opts.AppointmentFee,
		logger:  logger,
	}
}

// PropertyCard is a listing entry with its display price. AppointmentCount is
// only set for admins.
type PropertyCard struct {
	model.Property
	PriceDisplay     string `json:"priceDisplay"`
	AppointmentCount *int   `json:"appointmentCount,omitempty"`
}

// ListingView is the listing screen.
type ListingView struct {
	Properties []PropertyCard       `json:"properties"`
	MaxPrice   float64              `json:"maxPrice"`
	Type       string               `json:"type"`
	Types      []model.PropertyType `json:"types"`
	IsAdmin    bool                 `json:"isAdmin"`
}

// DetailView is the property detail screen. Booking is disabled for admins,
// who get AdminNotice instead of the booking panel.
type DetailView struct {
	Property       model.Property          `json:"property"`
	PriceDisplay   string                  `json:"priceDisplay"`
	FeeDisplay     string                  `json:"feeDisplay"`
	PaymentMethods []booking.PaymentMethod `json:"paymentMethods,omitempty"`
	BookingEnabled bool                    `json:"bookingEnabled"`
	AdminNotice    *booking.Notice         `json:"adminNotice,omitempty"`
}

// DashboardView is the admin dashboard.
type DashboardView struct {
	Appointments   []model.Appointment  `json:"appointments"`
	Users          []model.User         `json:"users"`
	Stats          model.DashboardStats `json:"stats"`
	RevenueDisplay string               `json:"revenueDisplay"`
	Properties     []PropertyCard       `json:"properties"`
}

var propertyTypes = []model.PropertyType{
	model.PropertyTypeHouse, model.PropertyTypeApartment, model.PropertyTypeKothi, model.PropertyTypePlot,
}

// Listing returns the properties passing filter. Admins also see how many
// appointments each property has; a failing stats call only hides the counts.
func (s *CatalogService) Listing(ctx context.Context, ident domainauth.Identity, filter model.PropertyFilter) (ListingView, error) {
	props, err := s.catalog.ListProperties(ctx)
	if err != nil {
		return ListingView{}, fmt.Errorf("list properties: %w", err)
	}

	var counts map[string]int
	if ident.IsAdmin() {
		stats, err := s.admin.Stats(ctx, ident.Credential())
		if err != nil {
			s.logger.Warn("load property stats failed", zap.Error(err))
		} else {
			counts = stats.PropertyStats
		}
	}

	if filter.MaxPrice <= 0 {
		filter.MaxPrice = model.DefaultMaxPrice
	}
	if filter.Type == "" {
		filter.Type = "All"
	}

	view := ListingView{
		Properties: make([]PropertyCard, 0, len(props)),
		MaxPrice:   filter.MaxPrice,
		Type:       filter.Type,
		Types:      propertyTypes,
		IsAdmin:    ident.IsAdmin(),
	}
	for _, p := range props {
		if !filter.Match(p) {
			continue
		}
		card := PropertyCard{Property: p, PriceDisplay: util.FormatINR(p.Price)}
		if ident.IsAdmin() && counts != nil {
			n := counts[p.ID]
			card.AppointmentCount = &n
		}
		view.Properties = append(view.Properties, card)
	}
	return view, nil
}

// Detail returns the detail screen for one property.
func (s *CatalogService) Detail(ctx context.Context, ident domainauth.Identity, id string) (DetailView, error) {
	p, err := s.catalog.GetProperty(ctx, id)
	if err != nil {
		return DetailView{}, fmt.Errorf("get property: %w", err)
	}
	view := DetailView{
		Property:     p,
		PriceDisplay: util.FormatINR(p.Price),
		FeeDisplay:   util.FormatINR(float64(s.fee)),
	}
	if ident.IsAdmin() {
		view.AdminNotice = &booking.Notice{
			Title:   "Admin View",
			Message: "You are viewing this page as an admin. Booking is disabled.",
		}
		return view, nil
	}
	view.BookingEnabled = true
	view.PaymentMethods = booking.PaymentMethods()
	return view, nil
}

// Dashboard loads appointments, users, stats and properties concurrently.
// The first failure wins and names the section it came from.
func (s *CatalogService) Dashboard(ctx context.Context, ident domainauth.Identity) (DashboardView, error) {
	if !ident.IsAdmin() {
		return DashboardView{}, apperrors.Forbidden("Admin access required.")
	}
	cred := ident.Credential()

	var view DashboardView
	var props []model.Property
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appts, err := s.admin.ListAppointments(gctx, cred)
		if err != nil {
			return sectionError("Appointments", err)
		}
		view.Appointments = appts
		return nil
	})
	g.Go(func() error {
		users, err := s.admin.ListUsers(gctx, cred)
		if err != nil {
			return sectionError("Users", err)
		}
		view.Users = users
		return nil
	})
	g.Go(func() error {
		stats, err := s.admin.Stats(gctx, cred)
		if err != nil {
			return sectionError("Stats", err)
		}
		view.Stats = stats.DashboardStats
		return nil
	})
	g.Go(func() error {
		list, err := s.catalog.ListProperties(gctx)
		if err != nil {
			return sectionError("Properties", err)
		}
		props = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return DashboardView{}, err
	}

	view.RevenueDisplay = util.FormatINR(view.Stats.TotalRevenue)
	view.Properties = make([]PropertyCard, 0, len(props))
	for _, p := range props {
		view.Properties = append(view.Properties, PropertyCard{Property: p, PriceDisplay: util.FormatINR(p.Price)})
	}
	return view, nil
}

func sectionError(section string, err error) error {
	msg := apperrors.UserMessage(err, "Request failed.")
	return apperrors.Wrap(err, codeOr(err, apperrors.ErrCodeTransport), section+": "+msg)
}

func codeOr(err error, fallback apperrors.ErrorCode) apperrors.ErrorCode {
	if code := apperrors.GetCode(err); code != "" {
		return code
	}
	return fallback
}

// CreateProperty validates and creates a listing. It returns the confirmation
// message shown to the admin.
func (s *CatalogService) CreateProperty(
	ctx context.Context,
	ident domainauth.Identity,
	req model.CreatePropertyRequest,
) (model.Property, string, error) {
	if !ident.IsAdmin() {
		return model.Property{}, "", apperrors.Forbidden("Admin access required.")
	}
	if err := req.Validate(); err != nil {
		return model.Property{}, "", apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}
	p, err := s.catalog.CreateProperty(ctx, ident.Credential(), req)
	if err != nil {
		return model.Property{}, "", fmt.Errorf("create property: %w", err)
	}
	location := p.Location
	if location == "" {
		location = req.Location
	}
	s.logger.Info("property created", zap.String("property_id", p.ID), zap.String("admin_id", ident.UserID()))
	return p, `Property "` + location + `" created successfully!`, nil
}

// DeleteProperty removes a listing and returns the backend's confirmation.
func (s *CatalogService) DeleteProperty(ctx context.Context, ident domainauth.Identity, id string) (string, error) {
	if !ident.IsAdmin() {
		return "", apperrors.Forbidden("Admin access required.")
	}
	msg, err := s.catalog.DeleteProperty(ctx, ident.Credential(), id)
	if err != nil {
		return "", fmt.Errorf("delete property: %w", err)
	}
	if msg == "" {
		msg = "Property deleted successfully."
	}
	s.logger.Info("property deleted", zap.String("property_id", id), zap.String("admin_id", ident.UserID()))
	return msg, nil
}
