package models

// GraduateType distinguishes civilian graduates from members of the armed forces
type GraduateType string

const (
	GraduateTypeCivil   GraduateType = "Civil"
	GraduateTypeMilitar GraduateType = "Militar"
)

// Valid reports whether t is one of the known graduate types
func (t GraduateType) Valid() bool {
	return t == GraduateTypeCivil || t == GraduateTypeMilitar
}

// FormPerson is the canonical person record returned by the forms API
type FormPerson struct {
	IDPerson       int64   `json:"idPerson"`
	LastName       string  `json:"lastName"`
	FirstName      string  `json:"firstName"`
	DocumentNumber string  `json:"documentNumber"`
	BirthDate      *string `json:"birthDate"`
	NationalityID  *int64  `json:"nationalityId"`
	BirthCityID    *int64  `json:"birthCityId"`
}

// FormContact is the canonical contact record
type FormContact struct {
	IDContact    int64   `json:"idContact"`
	MobilePhone  *string `json:"mobilePhone"`
	EmailAddress *string `json:"emailAddress"`
}

// FormGraduate is the canonical graduate record
type FormGraduate struct {
	IDGraduate     int64         `json:"idGraduate"`
	GraduateType   *GraduateType `json:"graduateType"`
	MilitaryRankID *int64        `json:"militaryRankId"`
	ForceID        *int64        `json:"forceId"`
}

// FormAddress is the canonical address record with denormalized location names
type FormAddress struct {
	IDAddress    int64     `json:"idAddress"`
	Street       *string   `json:"street"`
	StreetNumber *int64    `json:"streetNumber"`
	CityID       *int64    `json:"cityId"`
	City         *City     `json:"city"`
	Province     *Province `json:"province"`
	Country      *Country  `json:"country"`
}

// Force is an armed force (Ejército, Armada, Fuerza Aérea...)
type Force struct {
	IDForce   int64   `json:"idForce"`
	ForceName *string `json:"forceName"`
}

// MilitaryRank belongs to exactly one force
type MilitaryRank struct {
	IDMilitaryRank   int64   `json:"idMilitaryRank"`
	MilitaryRankName *string `json:"militaryRankName"`
	ForceID          *int64  `json:"forceId"`
}

// FormCatalogs carries the select options needed by the graduate step
type FormCatalogs struct {
	Forces        []Force        `json:"forces"`
	MilitaryRanks []MilitaryRank `json:"militaryRanks"`
}

// FormData is the full form record for a user
type FormData struct {
	Person   FormPerson    `json:"person"`
	Contact  *FormContact  `json:"contact"`
	Graduate *FormGraduate `json:"graduate"`
	Address  *FormAddress  `json:"address"`
	Catalogs FormCatalogs  `json:"catalogs"`
}

// PersonPayload is the person section of an update. Names and document are
// never null.
type PersonPayload struct {
	LastName       string  `json:"lastName"`
	FirstName      string  `json:"firstName"`
	DocumentNumber string  `json:"documentNumber"`
	BirthDate      *string `json:"birthDate"`
	NationalityID  *int64  `json:"nationalityId"`
	BirthCityID    *int64  `json:"birthCityId"`
}

// ContactPayload is the contact section of an update
type ContactPayload struct {
	MobilePhone  *string `json:"mobilePhone"`
	EmailAddress *string `json:"emailAddress"`
}

// GraduatePayload is the graduate section of an update
type GraduatePayload struct {
	GraduateType   GraduateType `json:"graduateType"`
	MilitaryRankID *int64       `json:"militaryRankId"`
	ForceID        *int64       `json:"forceId"`
}

// AddressPayload is the address section of an update
type AddressPayload struct {
	Street       *string `json:"street"`
	StreetNumber *int64  `json:"streetNumber"`
	CityID       *int64  `json:"cityId"`
}

// UpdateFormPayload is the body of PUT /api/forms/:userId.
//
// A nil Contact, Graduate or Address marshals as JSON null, which the API
// reads as "nothing to persist for this section". It is not a request to
// clear the stored record.
type UpdateFormPayload struct {
	Person   PersonPayload    `json:"person"`
	Contact  *ContactPayload  `json:"contact"`
	Graduate *GraduatePayload `json:"graduate"`
	Address  *AddressPayload  `json:"address"`
}
