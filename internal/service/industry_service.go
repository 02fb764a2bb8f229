package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/industry-portal/internal/apperr"
	"github.com/iliyamo/industry-portal/internal/model"
	"github.com/iliyamo/industry-portal/internal/queue"
	"github.com/iliyamo/industry-portal/internal/repository"
)

// ProfileStore is the persistence for the three profile tables.
// *repository.ProfileRepo satisfies it.
type ProfileStore interface {
	GetTour(ctx context.Context, userID uuid.UUID) (*model.TourProfile, error)
	UpsertTour(ctx context.Context, userID uuid.UUID, in model.TourProfileInput, now time.Time) (*model.TourProfile, error)
	GetTravel(ctx context.Context, userID uuid.UUID) (*model.TravelProfile, error)
	UpsertTravel(ctx context.Context, userID uuid.UUID, in model.TravelProfileInput, now time.Time) (*model.TravelProfile, error)
	GetLogistics(ctx context.Context, userID uuid.UUID) (*model.LogisticsProfile, error)
	UpsertLogistics(ctx context.Context, userID uuid.UUID, in model.LogisticsProfileInput, now time.Time) (*model.LogisticsProfile, error)
}

// IndustryUserStore changes a user's industry discriminator.
type IndustryUserStore interface {
	UpdateIndustryType(ctx context.Context, id uuid.UUID, t model.IndustryType, now time.Time) error
}

// NavItem is one entry of the dashboard navigation menu.
type NavItem struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Icon string `json:"icon"`
}

// PaymentOption is a payment method offered to an industry.
type PaymentOption struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// Dashboard is the payload of a dashboard view.  Lists holds the
// industry-specific collections (recentBookings, popularRoutes, ...).
type Dashboard struct {
	IndustryType model.IndustryType `json:"industryType"`
	Metrics      map[string]float64 `json:"metrics"`
	Lists        map[string][]any   `json:"lists"`
}

// variant is everything the dispatcher knows about one industry.  Industries
// without a profile table leave load and upsert nil.
type variant struct {
	route      string
	navigation []NavItem
	metricKeys []string
	listKeys   []string
	payments   []PaymentOption
	load       func(ctx context.Context, s ProfileStore, userID uuid.UUID) (model.Profile, error)
	upsert     func(ctx context.Context, s ProfileStore, userID uuid.UUID, raw []byte, now time.Time) (model.Profile, error)
}

var baseNavigation = []NavItem{
	{Name: "Dashboard", Path: "/dashboard", Icon: "dashboard"},
	{Name: "Profile", Path: "/dashboard/profile", Icon: "user"},
	{Name: "Payments", Path: "/payments", Icon: "credit-card"},
	{Name: "Settings", Path: "/dashboard/settings", Icon: "settings"},
}

var basePayments = []PaymentOption{
	{ID: "card", Name: "Credit/Debit Card", Provider: "razorpay"},
	{ID: "upi", Name: "UPI", Provider: "razorpay"},
	{ID: "netbanking", Name: "NetBanking", Provider: "razorpay"},
}

func withBase[T any](base []T, extra ...T) []T {
	out := make([]T, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

// variants has exactly one entry per model.IndustryTypes value.
var variants = map[model.IndustryType]variant{
	model.IndustryTour: {
		route: "/dashboard/tour",
		navigation: withBase(baseNavigation,
			NavItem{Name: "Tours", Path: "/tours", Icon: "map"},
			NavItem{Name: "Bookings", Path: "/bookings", Icon: "calendar"},
			NavItem{Name: "Customers", Path: "/customers", Icon: "users"},
			NavItem{Name: "Analytics", Path: "/analytics", Icon: "chart"},
		),
		metricKeys: []string{"totalTours", "activeTours", "totalBookings", "monthlyRevenue", "averageRating"},
		listKeys:   []string{"recentBookings", "upcomingTours", "popularDestinations"},
		payments:   withBase(basePayments, PaymentOption{ID: "wallet", Name: "Wallet", Provider: "razorpay"}),
		load: func(ctx context.Context, s ProfileStore, id uuid.UUID) (model.Profile, error) {
			p, err := s.GetTour(ctx, id)
			if p == nil || err != nil {
				return nil, missingOK(err)
			}
			return p, nil
		},
		upsert: func(ctx context.Context, s ProfileStore, id uuid.UUID, raw []byte, now time.Time) (model.Profile, error) {
			var in model.TourProfileInput
			if err := decodeInput(raw, &in); err != nil {
				return nil, err
			}
			p, err := s.UpsertTour(ctx, id, in, now)
			if p == nil || err != nil {
				return nil, err
			}
			return p, nil
		},
	},
	model.IndustryTravel: {
		route: "/dashboard/travel",
		navigation: withBase(baseNavigation,
			NavItem{Name: "Services", Path: "/services", Icon: "plane"},
			NavItem{Name: "Bookings", Path: "/bookings", Icon: "calendar"},
			NavItem{Name: "Customers", Path: "/customers", Icon: "users"},
			NavItem{Name: "Destinations", Path: "/destinations", Icon: "map"},
			NavItem{Name: "Analytics", Path: "/analytics", Icon: "chart"},
		),
		metricKeys: []string{"totalBookings", "activeBookings", "monthlyRevenue", "customerSatisfaction", "topDestinations"},
		listKeys:   []string{"recentBookings", "upcomingTravels", "popularDestinations"},
		payments:   withBase(basePayments, PaymentOption{ID: "paypal", Name: "PayPal", Provider: "paypal"}),
		load: func(ctx context.Context, s ProfileStore, id uuid.UUID) (model.Profile, error) {
			p, err := s.GetTravel(ctx, id)
			if p == nil || err != nil {
				return nil, missingOK(err)
			}
			return p, nil
		},
		upsert: func(ctx context.Context, s ProfileStore, id uuid.UUID, raw []byte, now time.Time) (model.Profile, error) {
			var in model.TravelProfileInput
			if err := decodeInput(raw, &in); err != nil {
				return nil, err
			}
			p, err := s.UpsertTravel(ctx, id, in, now)
			if p == nil || err != nil {
				return nil, err
			}
			return p, nil
		},
	},
	model.IndustryLogistics: {
		route: "/dashboard/logistics",
		navigation: withBase(baseNavigation,
			NavItem{Name: "Shipments", Path: "/shipments", Icon: "truck"},
			NavItem{Name: "Orders", Path: "/orders", Icon: "package"},
			NavItem{Name: "Customers", Path: "/customers", Icon: "users"},
			NavItem{Name: "Routes", Path: "/routes", Icon: "map"},
			NavItem{Name: "Analytics", Path: "/analytics", Icon: "chart"},
		),
		metricKeys: []string{"totalShipments", "activeShipments", "monthlyRevenue", "onTimeDelivery", "customerSatisfaction"},
		listKeys:   []string{"recentShipments", "activeShipments", "popularRoutes"},
		payments: withBase(basePayments,
			PaymentOption{ID: "ach", Name: "Bank Transfer (ACH)", Provider: "stripe"},
			PaymentOption{ID: "invoice", Name: "Invoice", Provider: "internal"},
		),
		load: func(ctx context.Context, s ProfileStore, id uuid.UUID) (model.Profile, error) {
			p, err := s.GetLogistics(ctx, id)
			if p == nil || err != nil {
				return nil, missingOK(err)
			}
			return p, nil
		},
		upsert: func(ctx context.Context, s ProfileStore, id uuid.UUID, raw []byte, now time.Time) (model.Profile, error) {
			var in model.LogisticsProfileInput
			if err := decodeInput(raw, &in); err != nil {
				return nil, err
			}
			p, err := s.UpsertLogistics(ctx, id, in, now)
			if p == nil || err != nil {
				return nil, err
			}
			return p, nil
		},
	},
	model.IndustryOther: {
		route:      "/dashboard/generic",
		navigation: baseNavigation,
		metricKeys: []string{"totalOrders", "activeOrders", "monthlyRevenue", "customerSatisfaction"},
		listKeys:   []string{"recentActivity", "notifications"},
		payments:   basePayments,
	},
}

// missingOK treats a missing profile row as "no profile".
func missingOK(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

func decodeInput(raw []byte, dst any) error {
	if err := decodeStrict(raw, dst); err != nil {
		return err
	}
	return checkStruct(dst)
}

// IndustryService dispatches profile, dashboard and navigation requests on
// the user's industry type.
type IndustryService struct {
	profiles ProfileStore
	users    IndustryUserStore
	metrics  MetricsSource
	events   queue.Publisher
	log      *zap.Logger
	now      func() time.Time
}

func NewIndustryService(profiles ProfileStore, users IndustryUserStore, src MetricsSource, events queue.Publisher, log *zap.Logger, now func() time.Time) *IndustryService {
	if src == nil {
		src = PlaceholderMetrics{}
	}
	if events == nil {
		events = queue.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &IndustryService{profiles: profiles, users: users, metrics: src, events: events, log: log, now: now}
}

func lookup(t model.IndustryType) (variant, bool) {
	v, ok := variants[t]
	return v, ok
}

// ResolveProfile returns the profile of userID for industry t.  Industries
// without a profile table, and users without a profile row, yield nil.
func (s *IndustryService) ResolveProfile(ctx context.Context, userID uuid.UUID, t model.IndustryType) (model.Profile, error) {
	v, ok := lookup(t)
	if !ok {
		return nil, apperr.ErrUnsupportedIndustry.WithMessage("Invalid industry type")
	}
	if v.load == nil {
		return nil, nil
	}
	p, err := v.load(ctx, s.profiles, userID)
	if err != nil {
		s.log.Error("load industry profile", zap.String("user_id", userID.String()), zap.String("industry_type", string(t)), zap.Error(err))
		return nil, apperr.ErrInternal.WithCause(err)
	}
	return p, nil
}

// UpsertProfile inserts the profile of userID or merges data into the stored
// one.  Fields absent from data keep their stored values.
func (s *IndustryService) UpsertProfile(ctx context.Context, userID uuid.UUID, t model.IndustryType, data json.RawMessage) (model.Profile, error) {
	v, ok := lookup(t)
	if !ok || v.upsert == nil {
		return nil, apperr.ErrUnsupportedIndustry
	}
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	p, err := v.upsert(ctx, s.profiles, userID, data, s.now())
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, ae
		}
		s.log.Error("upsert industry profile", zap.String("user_id", userID.String()), zap.String("industry_type", string(t)), zap.Error(err))
		return nil, apperr.ErrInternal.WithCause(err)
	}
	return p, nil
}

// UpdateProfile handles a profile update body that may also carry an
// industryType.  A changed industryType is applied first; the remaining
// fields are upserted into the profile of the resulting industry.  With no
// remaining fields the current profile is returned.
func (s *IndustryService) UpdateProfile(ctx context.Context, u model.User, body json.RawMessage) (model.Profile, model.IndustryType, error) {
	fields := map[string]json.RawMessage{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, u.Industry, apperr.Validation("Invalid profile data", apperr.FieldError{Field: "body", Message: "must be a JSON object"})
		}
	}

	industry := u.Industry
	if raw, ok := fields["industryType"]; ok {
		delete(fields, "industryType")
		var next string
		if err := json.Unmarshal(raw, &next); err != nil {
			return nil, industry, apperr.ErrInvalidIndustryType
		}
		if next != "" && model.IndustryType(next) != industry {
			if err := s.ChangeIndustryType(ctx, u, next); err != nil {
				return nil, industry, err
			}
			industry = model.IndustryType(next)
		}
	}

	if len(fields) == 0 {
		p, err := s.ResolveProfile(ctx, u.ID, industry)
		return p, industry, err
	}
	rest, err := json.Marshal(fields)
	if err != nil {
		return nil, industry, apperr.ErrInternal.WithCause(err)
	}
	p, err := s.UpsertProfile(ctx, u.ID, industry, rest)
	return p, industry, err
}

// DashboardData builds the dashboard for u's industry.  Unknown industries
// get the generic dashboard.
func (s *IndustryService) DashboardData(ctx context.Context, u model.User) (Dashboard, error) {
	t := u.Industry
	v, ok := lookup(t)
	if !ok {
		t = model.IndustryOther
		v = variants[t]
	}
	src, err := s.metrics.Metrics(ctx, u.ID, t)
	if err != nil {
		s.log.Error("dashboard metrics", zap.String("user_id", u.ID.String()), zap.Error(err))
		return Dashboard{}, apperr.ErrInternal.WithCause(err)
	}

	d := Dashboard{
		IndustryType: t,
		Metrics:      make(map[string]float64, len(v.metricKeys)),
		Lists:        make(map[string][]any, len(v.listKeys)),
	}
	for _, k := range v.metricKeys {
		d.Metrics[k] = src[k]
	}
	for _, k := range v.listKeys {
		d.Lists[k] = []any{}
	}
	return d, nil
}

// NavigationMenu returns the base menu plus the industry's extras.  Unknown
// industries get the base menu.
func (s *IndustryService) NavigationMenu(t model.IndustryType) []NavItem {
	v, ok := lookup(t)
	if !ok {
		v = variants[model.IndustryOther]
	}
	return append([]NavItem(nil), v.navigation...)
}

// DashboardRoute is the client-side route of t's dashboard.
func (s *IndustryService) DashboardRoute(t model.IndustryType) string {
	if v, ok := lookup(t); ok {
		return v.route
	}
	return variants[model.IndustryOther].route
}

// PaymentOptions lists the payment methods offered to t.
func (s *IndustryService) PaymentOptions(t model.IndustryType) []PaymentOption {
	v, ok := lookup(t)
	if !ok {
		v = variants[model.IndustryOther]
	}
	return append([]PaymentOption(nil), v.payments...)
}

// ChangeIndustryType switches u to next.  Profiles of the previous industry
// are left in place.
func (s *IndustryService) ChangeIndustryType(ctx context.Context, u model.User, next string) error {
	t, ok := model.ParseIndustryType(next)
	if !ok {
		return apperr.ErrInvalidIndustryType
	}
	if err := s.users.UpdateIndustryType(ctx, u.ID, t, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.ErrNotFound.WithMessage("User not found")
		}
		s.log.Error("update industry type", zap.String("user_id", u.ID.String()), zap.Error(err))
		return apperr.ErrInternal.WithCause(err)
	}
	s.log.Info("industry type changed", zap.String("user_id", u.ID.String()),
		zap.String("from", string(u.Industry)), zap.String("to", string(t)))
	if err := s.events.Publish(ctx, queue.IndustryChangedEvent{
		UserID:    u.ID,
		From:      string(u.Industry),
		To:        string(t),
		ChangedAt: s.now(),
	}); err != nil {
		s.log.Warn("event publish failed", zap.String("queue", queue.QueueIndustryChanged), zap.Error(err))
	}
	return nil
}
