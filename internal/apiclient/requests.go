package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sgeneral-iua/portal-sg/internal/models"
)

// AvailableTitles lists the titles the user can start a request for
func (c *Client) AvailableTitles(ctx context.Context, token string, userID int64) ([]models.AvailableTitle, error) {
	var out []models.AvailableTitle
	q := url.Values{"userId": {strconv.FormatInt(userID, 10)}}
	if err := c.doJSON(ctx, "available_titles", http.MethodGet, "/api/titles/available?"+q.Encode(), token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRequest generates a request for a title
func (c *Client) CreateRequest(ctx context.Context, token string, payload models.CreateRequestPayload) (*models.RequestCreationResponse, error) {
	var out *models.RequestCreationResponse
	if err := c.doJSON(ctx, "create_request", http.MethodPost, "/api/requests", token, payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}
