package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/sgeneral-iua/portal-sg/internal/models"
)

var (
	// ErrUnknownLocation is returned when a selected id is not in its parent's list
	ErrUnknownLocation = errors.New("location not found in catalog")
	// ErrUnknownGraduateType is returned for types other than Civil and Militar
	ErrUnknownGraduateType = errors.New("unknown graduate type")
	// ErrNoLocations is returned when the cascade has no catalog source
	ErrNoLocations = errors.New("location catalog not configured")
)

// SetGraduateType changes the graduate type. Civil clears force and rank.
func (c *Controller) SetGraduateType(t *models.GraduateType) error {
	if t != nil && *t != "" && !t.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownGraduateType, *t)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	g := &c.state.Graduate
	if t == nil || *t == "" {
		g.GraduateType = nil
		return nil
	}
	value := *t
	g.GraduateType = &value
	if value == models.GraduateTypeCivil {
		g.ForceID = nil
		g.MilitaryRankID = nil
	}
	return nil
}

func isCivil(g models.FormGraduate) bool {
	return g.GraduateType != nil && *g.GraduateType == models.GraduateTypeCivil
}

// SetForce selects a force and clears the rank. Civil graduates keep no force.
func (c *Controller) SetForce(forceID *int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if isCivil(c.state.Graduate) {
		return
	}
	c.state.Graduate.ForceID = copyInt(forceID)
	c.state.Graduate.MilitaryRankID = nil
}

// SetRank selects a rank. Whether it belongs to the force is checked on save.
// Ignored for Civil graduates.
func (c *Controller) SetRank(rankID *int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if isCivil(c.state.Graduate) {
		return
	}
	c.state.Graduate.MilitaryRankID = copyInt(rankID)
}

// RanksForSelectedForce lists the ranks offered for the current force
func (c *Controller) RanksForSelectedForce() []models.MilitaryRank {
	c.mu.Lock()
	defer c.mu.Unlock()
	return RanksForForce(c.state.Catalogs, c.state.Graduate.ForceID)
}

// ClearContact blanks both contact fields
func (c *Controller) ClearContact() {
	c.mu.Lock()
	defer c.mu.Unlock()
	empty := ""
	c.state.Contact.MobilePhone = &empty
	c.state.Contact.EmailAddress = &empty
}

// SelectCountry sets the address country and clears province and city.
// A nil id clears the whole selection.
func (c *Controller) SelectCountry(ctx context.Context, countryID *int64) error {
	var country *models.Country
	if !absent(countryID) {
		if c.deps.Locations == nil {
			return ErrNoLocations
		}
		countries, err := c.deps.Locations.Countries(ctx)
		if err != nil {
			return fmt.Errorf("load countries: %w", err)
		}
		for i := range countries {
			if countries[i].IDCountry == *countryID {
				found := countries[i]
				country = &found
				break
			}
		}
		if country == nil {
			return fmt.Errorf("%w: country %d", ErrUnknownLocation, *countryID)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	a := &c.state.Address
	a.Country = country
	a.Province = nil
	a.City = nil
	a.CityID = nil
	return nil
}

// SelectProvince sets the address province, which must belong to the
// selected country, and clears the city.
func (c *Controller) SelectProvince(ctx context.Context, provinceID *int64) error {
	c.mu.Lock()
	country := c.state.Address.Country
	c.mu.Unlock()

	var province *models.Province
	if !absent(provinceID) {
		if country == nil {
			return fmt.Errorf("%w: province %d without country", ErrUnknownLocation, *provinceID)
		}
		if c.deps.Locations == nil {
			return ErrNoLocations
		}
		provinces, err := c.deps.Locations.Provinces(ctx, country.IDCountry)
		if err != nil {
			return fmt.Errorf("load provinces: %w", err)
		}
		for i := range provinces {
			if provinces[i].IDProvince == *provinceID {
				found := provinces[i]
				province = &found
				break
			}
		}
		if province == nil {
			return fmt.Errorf("%w: province %d", ErrUnknownLocation, *provinceID)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	a := &c.state.Address
	a.Province = province
	a.City = nil
	a.CityID = nil
	return nil
}

// SelectCity sets the address city. With a province selected the city must
// belong to it; records loaded without a province accept the bare id.
func (c *Controller) SelectCity(ctx context.Context, cityID *int64) error {
	c.mu.Lock()
	province := c.state.Address.Province
	c.mu.Unlock()

	var city *models.City
	if !absent(cityID) && province != nil {
		if c.deps.Locations == nil {
			return ErrNoLocations
		}
		cities, err := c.deps.Locations.Cities(ctx, province.IDProvince)
		if err != nil {
			return fmt.Errorf("load cities: %w", err)
		}
		for i := range cities {
			if cities[i].IDCity == *cityID {
				found := cities[i]
				city = &found
				break
			}
		}
		if city == nil {
			return fmt.Errorf("%w: city %d", ErrUnknownLocation, *cityID)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	a := &c.state.Address
	a.City = city
	if absent(cityID) {
		a.CityID = nil
	} else {
		a.CityID = copyInt(cityID)
	}
	return nil
}
