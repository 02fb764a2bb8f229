package model

// IndustryType is the discriminator on a user record.  The set is closed:
// every value is listed in IndustryTypes and code dispatching on it keeps one
// entry per value.
type IndustryType string

const (
	IndustryTour      IndustryType = "tour"
	IndustryTravel    IndustryType = "travel"
	IndustryLogistics IndustryType = "logistics"
	IndustryOther     IndustryType = "other"
)

// IndustryTypes lists every valid discriminator in declaration order.
var IndustryTypes = []IndustryType{IndustryTour, IndustryTravel, IndustryLogistics, IndustryOther}

// ParseIndustryType converts s into an IndustryType.  ok is false for
// anything outside the closed set.
func ParseIndustryType(s string) (IndustryType, bool) {
	t := IndustryType(s)
	return t, t.Valid()
}

// Valid reports whether t is one of the four known discriminators.
func (t IndustryType) Valid() bool {
	switch t {
	case IndustryTour, IndustryTravel, IndustryLogistics, IndustryOther:
		return true
	}
	return false
}

// HasProfile reports whether t is backed by a profile table.
func (t IndustryType) HasProfile() bool {
	switch t {
	case IndustryTour, IndustryTravel, IndustryLogistics:
		return true
	}
	return false
}
