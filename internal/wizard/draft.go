package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/sgeneral-iua/portal-sg/internal/models"
)

var jsonNull = []byte("null")

// TextInput is a text field of a draft patch. Set is false when the key was
// absent; null and "" both clear the field.
type TextInput struct {
	Set   bool
	Value *string
}

// UnmarshalJSON accepts a string or null
func (t *TextInput) UnmarshalJSON(data []byte) error {
	t.Set = true
	t.Value = nil
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected text: %w", err)
	}
	t.Value = &s
	return nil
}

// NumberInput is a numeric field of a draft patch. It accepts JSON numbers
// and numeric strings; anything unparsable reads as null.
type NumberInput struct {
	Set   bool
	Value *int64
}

// UnmarshalJSON never fails; bad input becomes nil like an empty field
func (n *NumberInput) UnmarshalJSON(data []byte) error {
	n.Set = true
	n.Value = nil
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n.Value = ParseNumber(s)
		return nil
	}
	n.Value = ParseNumber(string(data))
	return nil
}

// PersonDraft holds personal data edits
type PersonDraft struct {
	LastName       TextInput   `json:"lastName"`
	FirstName      TextInput   `json:"firstName"`
	DocumentNumber TextInput   `json:"documentNumber"`
	BirthDate      TextInput   `json:"birthDate"`
	NationalityID  NumberInput `json:"nationalityId"`
	BirthCityID    NumberInput `json:"birthCityId"`
}

// ContactDraft holds contact edits
type ContactDraft struct {
	MobilePhone  TextInput `json:"mobilePhone"`
	EmailAddress TextInput `json:"emailAddress"`
}

// AddressDraft holds address edits. Country, province and city go through
// the cascade in that order.
type AddressDraft struct {
	Street       TextInput   `json:"street"`
	StreetNumber NumberInput `json:"streetNumber"`
	CountryID    NumberInput `json:"countryId"`
	ProvinceID   NumberInput `json:"provinceId"`
	CityID       NumberInput `json:"cityId"`
}

// GraduateDraft holds graduate type edits
type GraduateDraft struct {
	GraduateType   TextInput   `json:"graduateType"`
	ForceID        NumberInput `json:"forceId"`
	MilitaryRankID NumberInput `json:"militaryRankId"`
}

// Draft is the body of PATCH /v1/form/draft
type Draft struct {
	Person       *PersonDraft   `json:"person"`
	Contact      *ContactDraft  `json:"contact"`
	Address      *AddressDraft  `json:"address"`
	Graduate     *GraduateDraft `json:"graduate"`
	ClearContact bool           `json:"clearContact"`
}

func textValue(t TextInput) string {
	if t.Value == nil {
		return ""
	}
	return *t.Value
}

// ApplyDraft copies the edits into the state through the field mutators.
// Nothing is validated or sent to the API here. A draft applies as a whole:
// when any part fails the state is restored and only the error message changes.
func (c *Controller) ApplyDraft(ctx context.Context, d Draft) error {
	before := c.Snapshot()
	if err := c.applyDraft(ctx, d); err != nil {
		c.mu.Lock()
		c.state = before
		c.state.setError(MsgDraftRejected)
		c.mu.Unlock()
		return err
	}
	return nil
}

func (c *Controller) applyDraft(ctx context.Context, d Draft) error {
	if d.Person != nil {
		c.applyPerson(*d.Person)
	}

	if d.ClearContact {
		c.ClearContact()
	}
	if d.Contact != nil {
		c.mu.Lock()
		if d.Contact.MobilePhone.Set {
			c.state.Contact.MobilePhone = d.Contact.MobilePhone.Value
		}
		if d.Contact.EmailAddress.Set {
			c.state.Contact.EmailAddress = d.Contact.EmailAddress.Value
		}
		c.mu.Unlock()
	}

	if d.Address != nil {
		if err := c.applyAddress(ctx, *d.Address); err != nil {
			return err
		}
	}

	if d.Graduate != nil {
		g := *d.Graduate
		if g.GraduateType.Set {
			var t *models.GraduateType
			if g.GraduateType.Value != nil {
				value := models.GraduateType(*g.GraduateType.Value)
				t = &value
			}
			if err := c.SetGraduateType(t); err != nil {
				return err
			}
		}
		if g.ForceID.Set {
			c.SetForce(g.ForceID.Value)
		}
		if g.MilitaryRankID.Set {
			c.SetRank(g.MilitaryRankID.Value)
		}
	}
	return nil
}

func (c *Controller) applyPerson(p PersonDraft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	person := &c.state.Person
	if p.LastName.Set {
		person.LastName = textValue(p.LastName)
	}
	if p.FirstName.Set {
		person.FirstName = textValue(p.FirstName)
	}
	if p.DocumentNumber.Set {
		person.DocumentNumber = textValue(p.DocumentNumber)
	}
	if p.BirthDate.Set {
		person.BirthDate = p.BirthDate.Value
	}
	if p.NationalityID.Set {
		person.NationalityID = p.NationalityID.Value
	}
	if p.BirthCityID.Set {
		person.BirthCityID = p.BirthCityID.Value
	}
}

func (c *Controller) applyAddress(ctx context.Context, a AddressDraft) error {
	c.mu.Lock()
	if a.Street.Set {
		c.state.Address.Street = a.Street.Value
	}
	if a.StreetNumber.Set {
		c.state.Address.StreetNumber = a.StreetNumber.Value
	}
	c.mu.Unlock()

	if a.CountryID.Set {
		if err := c.SelectCountry(ctx, a.CountryID.Value); err != nil {
			return err
		}
	}
	if a.ProvinceID.Set {
		if err := c.SelectProvince(ctx, a.ProvinceID.Value); err != nil {
			return err
		}
	}
	if a.CityID.Set {
		if err := c.SelectCity(ctx, a.CityID.Value); err != nil {
			return err
		}
	}
	return nil
}
