package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is used for numbers typed without a country code
const DefaultPhoneRegion = "AR"

// ErrInvalidPhone is returned for numbers that do not parse or validate
var ErrInvalidPhone = errors.New("invalid phone number")

// PhoneComponents represents the parsed components of a phone number
type PhoneComponents struct {
	CountryCode    string `json:"countryCode"`
	NationalNumber string `json:"nationalNumber"`
	Full           string `json:"full"`
}

// ParsePhoneNumber parses a phone number string and returns its components.
// Numbers without a leading + are read as Argentine numbers.
func ParsePhoneNumber(phoneString string) (*PhoneComponents, error) {
	cleanPhone := strings.TrimSpace(phoneString)
	if cleanPhone == "" {
		return nil, ErrInvalidPhone
	}

	num, err := phonenumbers.Parse(cleanPhone, DefaultPhoneRegion)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPhone, err)
	}

	if !phonenumbers.IsValidNumber(num) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPhone, phoneString)
	}

	return &PhoneComponents{
		CountryCode:    fmt.Sprintf("%d", num.GetCountryCode()),
		NationalNumber: phonenumbers.GetNationalSignificantNumber(num),
		Full:           phonenumbers.Format(num, phonenumbers.E164),
	}, nil
}

// NormalizeMobile returns the E.164 form of a contact phone
func NormalizeMobile(phoneString string) (string, error) {
	components, err := ParsePhoneNumber(phoneString)
	if err != nil {
		return "", err
	}
	return components.Full, nil
}
