package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sgeneral-iua/portal-sg/internal/models"
)

// Dashboard fetches menu options and request summaries for the user
func (c *Client) Dashboard(ctx context.Context, token string, userID int64, roleID *int64) (*models.DashboardData, error) {
	q := url.Values{"userId": {strconv.FormatInt(userID, 10)}}
	if roleID != nil {
		q.Set("roleId", strconv.FormatInt(*roleID, 10))
	}

	var out models.DashboardData
	if err := c.doJSON(ctx, "dashboard", http.MethodGet, "/api/dashboard?"+q.Encode(), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
