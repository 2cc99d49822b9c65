package models

// Country is a top-level location
type Country struct {
	IDCountry   int64   `json:"idCountry"`
	CountryName *string `json:"countryName"`
}

// Province belongs to a country
type Province struct {
	IDProvince   int64   `json:"idProvince"`
	ProvinceName *string `json:"provinceName"`
	CountryID    *int64  `json:"countryId"`
}

// City belongs to a province
type City struct {
	IDCity     int64   `json:"idCity"`
	CityName   *string `json:"cityName"`
	ProvinceID *int64  `json:"provinceId"`
}
