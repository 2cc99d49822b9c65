package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sgeneral-iua/portal-sg/internal/models"
)

func (c *Client) Countries(ctx context.Context, token string) ([]models.Country, error) {
	var out []models.Country
	if err := c.doJSON(ctx, "list_countries", http.MethodGet, "/api/locations/countries", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Provinces(ctx context.Context, token string, countryID int64) ([]models.Province, error) {
	var out []models.Province
	path := fmt.Sprintf("/api/locations/countries/%d/provinces", countryID)
	if err := c.doJSON(ctx, "list_provinces", http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Cities(ctx context.Context, token string, provinceID int64) ([]models.City, error) {
	var out []models.City
	path := fmt.Sprintf("/api/locations/provinces/%d/cities", provinceID)
	if err := c.doJSON(ctx, "list_cities", http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
