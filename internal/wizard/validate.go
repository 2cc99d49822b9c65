package wizard

import (
	"github.com/sgeneral-iua/portal-sg/internal/models"
	"github.com/sgeneral-iua/portal-sg/internal/utils"
)

// MsgRankForceMismatch is reported when the rank belongs to another force
const MsgRankForceMismatch = "El grado seleccionado no corresponde a la fuerza elegida."

type personInput struct {
	LastName       string `json:"lastName" label:"Apellido" binding:"notblank"`
	FirstName      string `json:"firstName" label:"Nombre" binding:"notblank"`
	DocumentNumber string `json:"documentNumber" label:"Número de documento" binding:"notblank,docnumber"`
	BirthDate      string `json:"birthDate" label:"Fecha de nacimiento" binding:"omitempty,pastdate"`
}

type contactInput struct {
	MobilePhone  string `json:"mobilePhone" label:"Celular" binding:"omitempty,mobile_ar"`
	EmailAddress string `json:"emailAddress" label:"Correo electrónico" binding:"omitempty,email"`
}

type addressInput struct {
	StreetNumber *int64 `json:"streetNumber" label:"Número" binding:"omitempty,gt=0"`
}

type graduateInput struct {
	GraduateType string `json:"graduateType" label:"Tipo de egresado" binding:"omitempty,oneof=Civil Militar"`
}

// merge copies section errors into result as "<section>.<field>"
func merge(result *utils.ValidationResult, section string, sub *utils.ValidationResult) {
	for _, e := range sub.Errors {
		result.AddError(section+"."+e.Field, e.Message)
	}
}

// ValidateState checks every record before a save. Nothing is sent to the API
// while the result is invalid.
func ValidateState(s *State) *utils.ValidationResult {
	result := utils.NewValidationResult()
	payload := BuildPayload(s)

	merge(result, "person", utils.ValidateStruct(personInput{
		LastName:       payload.Person.LastName,
		FirstName:      payload.Person.FirstName,
		DocumentNumber: payload.Person.DocumentNumber,
		BirthDate:      orEmpty(payload.Person.BirthDate),
	}))

	if payload.Contact != nil {
		merge(result, "contact", utils.ValidateStruct(contactInput{
			MobilePhone:  orEmpty(payload.Contact.MobilePhone),
			EmailAddress: orEmpty(payload.Contact.EmailAddress),
		}))
	}

	if payload.Address != nil {
		merge(result, "address", utils.ValidateStruct(addressInput{
			StreetNumber: payload.Address.StreetNumber,
		}))
	}

	if payload.Graduate != nil {
		merge(result, "graduate", utils.ValidateStruct(graduateInput{
			GraduateType: string(payload.Graduate.GraduateType),
		}))
		if payload.Graduate.GraduateType == models.GraduateTypeMilitar && !rankMatchesForce(s.Catalogs, payload.Graduate.ForceID, payload.Graduate.MilitaryRankID) {
			result.AddError("graduate.militaryRankId", MsgRankForceMismatch)
		}
	}

	return result
}

// rankMatchesForce reports whether the chosen rank is listed under the
// chosen force. No rank chosen always matches.
func rankMatchesForce(catalogs models.FormCatalogs, forceID, rankID *int64) bool {
	if rankID == nil {
		return true
	}
	if forceID == nil {
		return false
	}
	for _, rank := range RanksForForce(catalogs, forceID) {
		if rank.IDMilitaryRank == *rankID {
			return true
		}
	}
	return false
}

// RanksForForce lists the ranks of a force. No force means no ranks.
func RanksForForce(catalogs models.FormCatalogs, forceID *int64) []models.MilitaryRank {
	ranks := []models.MilitaryRank{}
	if absent(forceID) {
		return ranks
	}
	for _, rank := range catalogs.MilitaryRanks {
		if rank.ForceID != nil && *rank.ForceID == *forceID {
			ranks = append(ranks, rank)
		}
	}
	return ranks
}
