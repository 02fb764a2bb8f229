package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/industry-portal/internal/model"
	"github.com/iliyamo/industry-portal/internal/queue"
	"github.com/iliyamo/industry-portal/internal/repository"
)

// recordingEvents is a queue.Publisher that keeps events in memory.
type recordingEvents struct {
	mu     sync.Mutex
	events []queue.Event
}

func (r *recordingEvents) Publish(_ context.Context, ev queue.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingEvents) Events() []queue.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]queue.Event, len(r.events))
	copy(out, r.events)
	return out
}

type clock struct{ t time.Time }

func newClock() *clock                   { return &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)} }
func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// fakeUsers is an in-memory UserStore with the same lockout arithmetic as
// the SQL statement in repository.UserRepo.
type fakeUsers struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*model.User
	lookupErr error
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[uuid.UUID]*model.User{}} }

func (f *fakeUsers) Create(_ context.Context, nu repository.NewUser) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == nu.Email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	u := &model.User{
		ID: uuid.New(), FirstName: nu.FirstName, LastName: nu.LastName, Email: nu.Email,
		PasswordHash: nu.PasswordHash, Role: nu.Role, Industry: nu.Industry, Phone: nu.Phone,
		IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	f.byID[u.ID] = u
	return *u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return model.User{}, f.lookupErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			return *u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return model.User{}, f.lookupErr
	}
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return *u, nil
}

func (f *fakeUsers) RecordFailedLogin(_ context.Context, id uuid.UUID, maxAttempts int, lockFor time.Duration, now time.Time) (repository.LockState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.LockState{}, repository.ErrNotFound
	}
	if u.LockUntil != nil && !u.LockUntil.After(now) {
		u.LoginAttempts = 1
		u.LockUntil = nil
	} else {
		u.LoginAttempts++
	}
	if u.LoginAttempts >= maxAttempts {
		lu := now.Add(lockFor)
		u.LockUntil = &lu
	}
	return repository.LockState{Attempts: u.LoginAttempts, LockUntil: u.LockUntil}, nil
}

func (f *fakeUsers) RecordSuccessfulLogin(_ context.Context, id uuid.UUID, now time.Time) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	u.LoginAttempts = 0
	u.LockUntil = nil
	ll := now
	u.LastLogin = &ll
	return *u, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string, now time.Time) error {
	return f.mutate(id, func(u *model.User) { u.PasswordHash = hash; u.UpdatedAt = now })
}

func (f *fakeUsers) UpdateIndustryType(_ context.Context, id uuid.UUID, t model.IndustryType, now time.Time) error {
	return f.mutate(id, func(u *model.User) { u.Industry = t; u.UpdatedAt = now })
}

func (f *fakeUsers) mutate(id uuid.UUID, fn func(*model.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(u)
	return nil
}

func (f *fakeUsers) get(id uuid.UUID) model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.byID[id]
}

// fakeProfiles stores one profile per (industry, user) and merges inputs the
// way the SQL upserts do.
type fakeProfiles struct {
	mu        sync.Mutex
	tour      map[uuid.UUID]*model.TourProfile
	travel    map[uuid.UUID]*model.TravelProfile
	logistics map[uuid.UUID]*model.LogisticsProfile
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{
		tour:      map[uuid.UUID]*model.TourProfile{},
		travel:    map[uuid.UUID]*model.TravelProfile{},
		logistics: map[uuid.UUID]*model.LogisticsProfile{},
	}
}

func pick[T any](in, cur T, set bool) T {
	if set {
		return in
	}
	return cur
}

func (f *fakeProfiles) GetTour(_ context.Context, id uuid.UUID) (*model.TourProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.tour[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) UpsertTour(_ context.Context, id uuid.UUID, in model.TourProfileInput, now time.Time) (*model.TourProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.tour[id]
	if !ok {
		p = &model.TourProfile{ID: uuid.New(), UserID: id, CreatedAt: now}
		f.tour[id] = p
	}
	p.CompanyName = pick(in.CompanyName, p.CompanyName, in.CompanyName != nil)
	p.LicenseNumber = pick(in.LicenseNumber, p.LicenseNumber, in.LicenseNumber != nil)
	p.Specialties = pick(in.Specialties, p.Specialties, in.Specialties != nil)
	p.Languages = pick(in.Languages, p.Languages, in.Languages != nil)
	p.Certifications = pick(in.Certifications, p.Certifications, in.Certifications != nil)
	p.Experience = pick(in.Experience, p.Experience, in.Experience != nil)
	p.UpdatedAt = now
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) GetTravel(_ context.Context, id uuid.UUID) (*model.TravelProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.travel[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) UpsertTravel(_ context.Context, id uuid.UUID, in model.TravelProfileInput, now time.Time) (*model.TravelProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.travel[id]
	if !ok {
		p = &model.TravelProfile{ID: uuid.New(), UserID: id, CreatedAt: now}
		f.travel[id] = p
	}
	p.AgencyName = pick(in.AgencyName, p.AgencyName, in.AgencyName != nil)
	p.IATANumber = pick(in.IATANumber, p.IATANumber, in.IATANumber != nil)
	p.Destinations = pick(in.Destinations, p.Destinations, in.Destinations != nil)
	p.Experience = pick(in.Experience, p.Experience, in.Experience != nil)
	p.UpdatedAt = now
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) GetLogistics(_ context.Context, id uuid.UUID) (*model.LogisticsProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.logistics[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) UpsertLogistics(_ context.Context, id uuid.UUID, in model.LogisticsProfileInput, now time.Time) (*model.LogisticsProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.logistics[id]
	if !ok {
		p = &model.LogisticsProfile{ID: uuid.New(), UserID: id, CreatedAt: now}
		f.logistics[id] = p
	}
	p.CompanyName = pick(in.CompanyName, p.CompanyName, in.CompanyName != nil)
	p.VehicleTypes = pick(in.VehicleTypes, p.VehicleTypes, in.VehicleTypes != nil)
	p.CoverageAreas = pick(in.CoverageAreas, p.CoverageAreas, in.CoverageAreas != nil)
	p.UpdatedAt = now
	cp := *p
	return &cp, nil
}
