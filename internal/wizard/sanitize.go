package wizard

import (
	"math"
	"strconv"
	"strings"

	"github.com/sgeneral-iua/portal-sg/internal/models"
)

// SanitizeString trims s and maps empty input to nil
func SanitizeString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ParseNumber reads a numeric form input. Blank, non-finite, fractional and
// unparsable input yields nil.
func ParseNumber(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil
	}
	if f >= 1<<63 || f < -(1<<63) {
		return nil
	}
	n := int64(f)
	return &n
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func copyInt(n *int64) *int64 {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}

// absent treats zero ids as not chosen
func absent(n *int64) bool {
	return n == nil || *n == 0
}

// SanitizePerson builds the person section. Names and document are sent as
// "" rather than null.
func SanitizePerson(p models.FormPerson) models.PersonPayload {
	return models.PersonPayload{
		LastName:       orEmpty(SanitizeString(&p.LastName)),
		FirstName:      orEmpty(SanitizeString(&p.FirstName)),
		DocumentNumber: orEmpty(SanitizeString(&p.DocumentNumber)),
		BirthDate:      SanitizeString(p.BirthDate),
		NationalityID:  copyInt(p.NationalityID),
		BirthCityID:    copyInt(p.BirthCityID),
	}
}

// SanitizeContact returns nil when neither phone nor email carries a value,
// meaning "no contact data to persist".
func SanitizeContact(c models.FormContact) *models.ContactPayload {
	mobilePhone := SanitizeString(c.MobilePhone)
	emailAddress := SanitizeString(c.EmailAddress)
	if mobilePhone == nil && emailAddress == nil {
		return nil
	}
	return &models.ContactPayload{
		MobilePhone:  mobilePhone,
		EmailAddress: emailAddress,
	}
}

// SanitizeAddress returns nil when street, number and city are all empty
func SanitizeAddress(a models.FormAddress) *models.AddressPayload {
	street := SanitizeString(a.Street)
	if street == nil && absent(a.StreetNumber) && absent(a.CityID) {
		return nil
	}
	return &models.AddressPayload{
		Street:       street,
		StreetNumber: copyInt(a.StreetNumber),
		CityID:       copyInt(a.CityID),
	}
}

// SanitizeGraduate returns nil when no type is chosen. Civil graduates never
// carry force or rank.
func SanitizeGraduate(g models.FormGraduate) *models.GraduatePayload {
	if g.GraduateType == nil || *g.GraduateType == "" {
		return nil
	}
	if *g.GraduateType == models.GraduateTypeCivil {
		return &models.GraduatePayload{GraduateType: models.GraduateTypeCivil}
	}
	return &models.GraduatePayload{
		GraduateType:   *g.GraduateType,
		MilitaryRankID: copyInt(g.MilitaryRankID),
		ForceID:        copyInt(g.ForceID),
	}
}

// BuildPayload sanitizes all four records into one update
func BuildPayload(s *State) models.UpdateFormPayload {
	return models.UpdateFormPayload{
		Person:   SanitizePerson(s.Person),
		Contact:  SanitizeContact(s.Contact),
		Graduate: SanitizeGraduate(s.Graduate),
		Address:  SanitizeAddress(s.Address),
	}
}
