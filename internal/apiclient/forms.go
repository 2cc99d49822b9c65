package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sgeneral-iua/portal-sg/internal/models"
)

// FormData fetches the user's person, contact, graduate and address records
func (c *Client) FormData(ctx context.Context, token string, userID int64) (*models.FormData, error) {
	var out *models.FormData
	path := fmt.Sprintf("/api/forms/%d", userID)
	if err := c.doJSON(ctx, "get_form", http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateForm persists the sanitized payload and returns the canonical record.
// A nil result with nil error means the API answered with an empty body.
func (c *Client) UpdateForm(ctx context.Context, token string, userID int64, payload models.UpdateFormPayload) (*models.FormData, error) {
	var out *models.FormData
	path := fmt.Sprintf("/api/forms/%d", userID)
	if err := c.doJSON(ctx, "update_form", http.MethodPut, path, token, payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FormPDF asks the API to render the form as a PDF
func (c *Client) FormPDF(ctx context.Context, token string, userID int64) (*models.FileBlob, error) {
	path := fmt.Sprintf("/api/forms/%d/pdf", userID)
	return c.doBlob(ctx, "form_pdf", http.MethodPost, path, token)
}
