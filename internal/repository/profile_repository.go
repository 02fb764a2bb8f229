package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/industry-portal/internal/model"
)

// ProfileRepo reads and upserts the three industry profile tables.  Each
// table has a UNIQUE user_id, which is the upsert conflict target.  Upserts
// merge: a nil input field keeps the stored value.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

// jsonList adapts a []string to a JSONB column in both directions.
type jsonList struct{ dst *[]string }

func (j jsonList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*j.dst = nil
		return nil
	case []byte:
		return json.Unmarshal(v, j.dst)
	case string:
		return json.Unmarshal([]byte(v), j.dst)
	}
	return fmt.Errorf("jsonList: unsupported type %T", src)
}

// listArg encodes a list for a JSONB parameter; nil stays NULL so COALESCE
// keeps the stored value.
func listArg(v []string) any {
	if v == nil {
		return nil
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func noRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// ----- tour -----

const tourColumns = `id, user_id, company_name, license_number, specialties, languages, certifications,
	experience, rating, total_tours, created_at, updated_at`

func scanTour(row rowScanner) (*model.TourProfile, error) {
	var p model.TourProfile
	err := row.Scan(&p.ID, &p.UserID, &p.CompanyName, &p.LicenseNumber, jsonList{&p.Specialties},
		jsonList{&p.Languages}, jsonList{&p.Certifications}, &p.Experience, &p.Rating, &p.TotalTours,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, noRows(err)
	}
	return &p, nil
}

// GetTour returns the tour profile owned by userID.
func (r *ProfileRepo) GetTour(ctx context.Context, userID uuid.UUID) (*model.TourProfile, error) {
	return scanTour(r.DB.QueryRowContext(ctx,
		`SELECT `+tourColumns+` FROM tour_profiles WHERE user_id = $1 LIMIT 1`, userID))
}

// UpsertTour inserts or merges the tour profile of userID.
func (r *ProfileRepo) UpsertTour(ctx context.Context, userID uuid.UUID, in model.TourProfileInput, now time.Time) (*model.TourProfile, error) {
	p, err := scanTour(r.DB.QueryRowContext(ctx, `
		INSERT INTO tour_profiles AS p
			(user_id, company_name, license_number, specialties, languages, certifications, experience, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			company_name   = COALESCE(EXCLUDED.company_name, p.company_name),
			license_number = COALESCE(EXCLUDED.license_number, p.license_number),
			specialties    = COALESCE(EXCLUDED.specialties, p.specialties),
			languages      = COALESCE(EXCLUDED.languages, p.languages),
			certifications = COALESCE(EXCLUDED.certifications, p.certifications),
			experience     = COALESCE(EXCLUDED.experience, p.experience),
			updated_at     = EXCLUDED.updated_at
		RETURNING `+tourColumns,
		userID, in.CompanyName, in.LicenseNumber, listArg(in.Specialties), listArg(in.Languages),
		listArg(in.Certifications), in.Experience, now))
	if err != nil {
		return nil, fmt.Errorf("upsert tour profile: %w", err)
	}
	return p, nil
}

// ----- travel -----

const travelColumns = `id, user_id, agency_name, iata_number, specialties, destinations, certifications,
	experience, rating, total_bookings, created_at, updated_at`

func scanTravel(row rowScanner) (*model.TravelProfile, error) {
	var p model.TravelProfile
	err := row.Scan(&p.ID, &p.UserID, &p.AgencyName, &p.IATANumber, jsonList{&p.Specialties},
		jsonList{&p.Destinations}, jsonList{&p.Certifications}, &p.Experience, &p.Rating, &p.TotalBookings,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, noRows(err)
	}
	return &p, nil
}

// GetTravel returns the travel profile owned by userID.
func (r *ProfileRepo) GetTravel(ctx context.Context, userID uuid.UUID) (*model.TravelProfile, error) {
	return scanTravel(r.DB.QueryRowContext(ctx,
		`SELECT `+travelColumns+` FROM travel_profiles WHERE user_id = $1 LIMIT 1`, userID))
}

// UpsertTravel inserts or merges the travel profile of userID.
func (r *ProfileRepo) UpsertTravel(ctx context.Context, userID uuid.UUID, in model.TravelProfileInput, now time.Time) (*model.TravelProfile, error) {
	p, err := scanTravel(r.DB.QueryRowContext(ctx, `
		INSERT INTO travel_profiles AS p
			(user_id, agency_name, iata_number, specialties, destinations, certifications, experience, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			agency_name    = COALESCE(EXCLUDED.agency_name, p.agency_name),
			iata_number    = COALESCE(EXCLUDED.iata_number, p.iata_number),
			specialties    = COALESCE(EXCLUDED.specialties, p.specialties),
			destinations   = COALESCE(EXCLUDED.destinations, p.destinations),
			certifications = COALESCE(EXCLUDED.certifications, p.certifications),
			experience     = COALESCE(EXCLUDED.experience, p.experience),
			updated_at     = EXCLUDED.updated_at
		RETURNING `+travelColumns,
		userID, in.AgencyName, in.IATANumber, listArg(in.Specialties), listArg(in.Destinations),
		listArg(in.Certifications), in.Experience, now))
	if err != nil {
		return nil, fmt.Errorf("upsert travel profile: %w", err)
	}
	return p, nil
}

// ----- logistics -----

const logisticsColumns = `id, user_id, company_name, license_number, specialties, vehicle_types,
	coverage_areas, certifications, experience, rating, total_shipments, created_at, updated_at`

func scanLogistics(row rowScanner) (*model.LogisticsProfile, error) {
	var p model.LogisticsProfile
	err := row.Scan(&p.ID, &p.UserID, &p.CompanyName, &p.LicenseNumber, jsonList{&p.Specialties},
		jsonList{&p.VehicleTypes}, jsonList{&p.CoverageAreas}, jsonList{&p.Certifications}, &p.Experience,
		&p.Rating, &p.TotalShipments, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, noRows(err)
	}
	return &p, nil
}

// GetLogistics returns the logistics profile owned by userID.
func (r *ProfileRepo) GetLogistics(ctx context.Context, userID uuid.UUID) (*model.LogisticsProfile, error) {
	return scanLogistics(r.DB.QueryRowContext(ctx,
		`SELECT `+logisticsColumns+` FROM logistics_profiles WHERE user_id = $1 LIMIT 1`, userID))
}

// UpsertLogistics inserts or merges the logistics profile of userID.
func (r *ProfileRepo) UpsertLogistics(ctx context.Context, userID uuid.UUID, in model.LogisticsProfileInput, now time.Time) (*model.LogisticsProfile, error) {
	p, err := scanLogistics(r.DB.QueryRowContext(ctx, `
		INSERT INTO logistics_profiles AS p
			(user_id, company_name, license_number, specialties, vehicle_types, coverage_areas,
			 certifications, experience, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			company_name   = COALESCE(EXCLUDED.company_name, p.company_name),
			license_number = COALESCE(EXCLUDED.license_number, p.license_number),
			specialties    = COALESCE(EXCLUDED.specialties, p.specialties),
			vehicle_types  = COALESCE(EXCLUDED.vehicle_types, p.vehicle_types),
			coverage_areas = COALESCE(EXCLUDED.coverage_areas, p.coverage_areas),
			certifications = COALESCE(EXCLUDED.certifications, p.certifications),
			experience     = COALESCE(EXCLUDED.experience, p.experience),
			updated_at     = EXCLUDED.updated_at
		RETURNING `+logisticsColumns,
		userID, in.CompanyName, in.LicenseNumber, listArg(in.Specialties), listArg(in.VehicleTypes),
		listArg(in.CoverageAreas), listArg(in.Certifications), in.Experience, now))
	if err != nil {
		return nil, fmt.Errorf("upsert logistics profile: %w", err)
	}
	return p, nil
}
