package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile is implemented by the three industry-specific profile rows.
type Profile interface {
	Industry() IndustryType
}

// TourProfile mirrors `tour_profiles`.  Rating and TotalTours are maintained
// by the server and cannot be set through profile updates.
type TourProfile struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"userId"`
	CompanyName    *string   `json:"companyName"`
	LicenseNumber  *string   `json:"licenseNumber"`
	Specialties    []string  `json:"specialties"`
	Languages      []string  `json:"languages"`
	Certifications []string  `json:"certifications"`
	Experience     *int      `json:"experience"`
	Rating         float64   `json:"rating"`
	TotalTours     int       `json:"totalTours"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (p *TourProfile) Industry() IndustryType { return IndustryTour }

// TravelProfile mirrors `travel_profiles`.
type TravelProfile struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"userId"`
	AgencyName     *string   `json:"agencyName"`
	IATANumber     *string   `json:"iataNumber"`
	Specialties    []string  `json:"specialties"`
	Destinations   []string  `json:"destinations"`
	Certifications []string  `json:"certifications"`
	Experience     *int      `json:"experience"`
	Rating         float64   `json:"rating"`
	TotalBookings  int       `json:"totalBookings"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (p *TravelProfile) Industry() IndustryType { return IndustryTravel }

// LogisticsProfile mirrors `logistics_profiles`.
type LogisticsProfile struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"userId"`
	CompanyName    *string   `json:"companyName"`
	LicenseNumber  *string   `json:"licenseNumber"`
	Specialties    []string  `json:"specialties"`
	VehicleTypes   []string  `json:"vehicleTypes"`
	CoverageAreas  []string  `json:"coverageAreas"`
	Certifications []string  `json:"certifications"`
	Experience     *int      `json:"experience"`
	Rating         float64   `json:"rating"`
	TotalShipments int       `json:"totalShipments"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (p *LogisticsProfile) Industry() IndustryType { return IndustryLogistics }

// Profile inputs carry the client-writable fields of each variant.  A nil
// field means "leave the stored value unchanged".

type TourProfileInput struct {
	CompanyName    *string  `json:"companyName" validate:"omitempty,max=100"`
	LicenseNumber  *string  `json:"licenseNumber" validate:"omitempty,max=50"`
	Specialties    []string `json:"specialties" validate:"omitempty,dive,max=100"`
	Languages      []string `json:"languages" validate:"omitempty,dive,max=50"`
	Certifications []string `json:"certifications" validate:"omitempty,dive,max=100"`
	Experience     *int     `json:"experience" validate:"omitempty,min=0,max=100"`
}

type TravelProfileInput struct {
	AgencyName     *string  `json:"agencyName" validate:"omitempty,max=100"`
	IATANumber     *string  `json:"iataNumber" validate:"omitempty,max=50"`
	Specialties    []string `json:"specialties" validate:"omitempty,dive,max=100"`
	Destinations   []string `json:"destinations" validate:"omitempty,dive,max=100"`
	Certifications []string `json:"certifications" validate:"omitempty,dive,max=100"`
	Experience     *int     `json:"experience" validate:"omitempty,min=0,max=100"`
}

type LogisticsProfileInput struct {
	CompanyName    *string  `json:"companyName" validate:"omitempty,max=100"`
	LicenseNumber  *string  `json:"licenseNumber" validate:"omitempty,max=50"`
	Specialties    []string `json:"specialties" validate:"omitempty,dive,max=100"`
	VehicleTypes   []string `json:"vehicleTypes" validate:"omitempty,dive,max=50"`
	CoverageAreas  []string `json:"coverageAreas" validate:"omitempty,dive,max=100"`
	Certifications []string `json:"certifications" validate:"omitempty,dive,max=100"`
	Experience     *int     `json:"experience" validate:"omitempty,min=0,max=100"`
}
