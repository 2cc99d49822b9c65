package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	"github.com/sgeneral-iua/portal-sg/internal/models"
)

func requirementPath(requestID, instanceID int64, suffix string) string {
	return fmt.Sprintf("/api/requests/%d/requirements/%d/%s", requestID, instanceID, suffix)
}

// Requirements lists the requirement instances of a request
func (c *Client) Requirements(ctx context.Context, token string, requestID int64) ([]models.RequirementItem, error) {
	var out []models.RequirementItem
	path := fmt.Sprintf("/api/requests/%d/requirements", requestID)
	if err := c.doJSON(ctx, "list_requirements", http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadRequirementFile sends the document as multipart form data with the
// uploader id and the status the instance should move to.
func (c *Client) UploadRequirementFile(ctx context.Context, token string, requestID, instanceID, userID, nextStatusID int64, file models.UploadFile) (*models.RequirementItem, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.FileName))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, fmt.Errorf("failed to write file part: %w", err)
	}
	if err := writer.WriteField("userId", strconv.FormatInt(userID, 10)); err != nil {
		return nil, err
	}
	if err := writer.WriteField("nextStatusId", strconv.FormatInt(nextStatusID, 10)); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	_, body, err := c.do(ctx, request{
		op:          "upload_requirement",
		method:      http.MethodPost,
		path:        requirementPath(requestID, instanceID, "file"),
		token:       token,
		body:        &buf,
		contentType: writer.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}
	return decodeItem(body, "upload_requirement")
}

// DownloadRequirementFile fetches the uploaded document. FileName is empty
// when the API did not send one.
func (c *Client) DownloadRequirementFile(ctx context.Context, token string, requestID, instanceID int64) (*models.FileBlob, error) {
	return c.doBlob(ctx, "download_requirement", http.MethodGet, requirementPath(requestID, instanceID, "file"), token)
}

// ReviewRequirement accepts or rejects an uploaded document
func (c *Client) ReviewRequirement(ctx context.Context, token string, requestID, instanceID int64, payload models.ReviewPayload) (*models.RequirementItem, error) {
	var out *models.RequirementItem
	path := requirementPath(requestID, instanceID, "review")
	if err := c.doJSON(ctx, "review_requirement", http.MethodPatch, path, token, payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeItem returns nil for an empty or null body
func decodeItem(body []byte, op string) (*models.RequirementItem, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var out *models.RequirementItem
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return out, nil
}
