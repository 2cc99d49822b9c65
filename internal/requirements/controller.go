package requirements

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sgeneral-iua/portal-sg/internal/apiclient"
	"github.com/sgeneral-iua/portal-sg/internal/logging"
	"github.com/sgeneral-iua/portal-sg/internal/models"
	"github.com/sgeneral-iua/portal-sg/internal/observability"
	"github.com/sgeneral-iua/portal-sg/internal/utils"
	"go.uber.org/zap"
)

// User-facing messages
const (
	MsgFetchFailed    = "No fue posible obtener los requisitos de la solicitud. Intentá nuevamente más tarde."
	MsgUploaded       = "Archivo cargado correctamente."
	MsgUploadFailed   = "No se pudo subir el archivo. Intentá nuevamente."
	MsgDownloadFailed = "No pudimos descargar el archivo. Intentá nuevamente."
	MsgAccepted       = "Requisito aceptado correctamente."
	MsgRejected       = "Requisito marcado como rechazado."
	MsgReviewFailed   = "No se pudo actualizar el requisito. Intentá nuevamente."
	MsgUnexpected     = "Respuesta inesperada del servidor. Intentá nuevamente."
)

var (
	// ErrItemBusy is returned when an item already has an operation in flight
	ErrItemBusy = errors.New("requirement operation in progress")
	// ErrNotReviewer is returned when a graduate tries a reviewer action
	ErrNotReviewer = errors.New("reviewer role required")
	// ErrItemNotFound is returned for instance ids not visible to the session
	ErrItemNotFound = errors.New("requirement not found")
	// ErrUploadDisabled is returned when the reviewer rules block an upload
	ErrUploadDisabled = errors.New("upload not allowed for this requirement")
	// ErrReviewNotAllowed is returned when the item cannot take the decision
	ErrReviewNotAllowed = errors.New("review not allowed for this requirement")
	// ErrNoFile is returned when downloading an item without a document
	ErrNoFile = errors.New("requirement has no file")
	// ErrEmptyResponse is returned when the API answers an update with no item
	ErrEmptyResponse = errors.New("empty response from API")
)

// Gateway is the part of the remote API this package needs
type Gateway interface {
	Requirements(ctx context.Context, token string, requestID int64) ([]models.RequirementItem, error)
	UploadRequirementFile(ctx context.Context, token string, requestID, instanceID, userID, nextStatusID int64, file models.UploadFile) (*models.RequirementItem, error)
	DownloadRequirementFile(ctx context.Context, token string, requestID, instanceID int64) (*models.FileBlob, error)
	ReviewRequirement(ctx context.Context, token string, requestID, instanceID int64, payload models.ReviewPayload) (*models.RequirementItem, error)
}

// Viewer identifies who is looking at the list
type Viewer struct {
	UserID   int64
	Token    string
	Reviewer bool
}

type entry struct {
	record         models.RequirementItem
	state          State
	outcome        Outcome
	downloading    bool
	reviewAction   string
	errorMessage   *string
	successMessage *string
	reviewComment  string
}

func (e *entry) setError(msg string) {
	e.errorMessage = &msg
	e.successMessage = nil
}

func (e *entry) setSuccess(msg string) {
	e.successMessage = &msg
	e.errorMessage = nil
}

func (e *entry) clearMessages() {
	e.errorMessage = nil
	e.successMessage = nil
}

// Controller holds the requirement list of one request for one session.
// Operations on different items run concurrently; a second operation on a
// busy item returns ErrItemBusy.
type Controller struct {
	mu         sync.Mutex
	requestID  int64
	viewer     Viewer
	gateway    Gateway
	logger     *logging.SafeLogger
	entries    []*entry
	fetchError *string
}

// Load fetches the request's requirements. A failed fetch yields a controller
// with no items and the fetch error set.
func Load(ctx context.Context, gateway Gateway, viewer Viewer, requestID int64, logger *logging.SafeLogger) *Controller {
	ctx, span := utils.TraceBusinessLogic(ctx, "requirements_load")
	defer span.End()

	c := &Controller{
		requestID: requestID,
		viewer:    viewer,
		gateway:   gateway,
		logger:    logger.Named("requirements"),
	}

	items, err := gateway.Requirements(ctx, viewer.Token, requestID)
	if err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"request.id": requestID})
		c.logger.Warn("failed to load requirements",
			zap.Int64("request_id", requestID),
			zap.Error(err))
		msg := MsgFetchFailed
		c.fetchError = &msg
		observability.RequirementActions.WithLabelValues("load", "error").Inc()
		return c
	}

	for _, item := range Visible(items, viewer.Reviewer) {
		c.entries = append(c.entries, &entry{
			record:        item,
			state:         StateOf(item),
			reviewComment: orEmpty(item.RequirementInstance.ReviewReason),
		})
	}
	observability.RequirementActions.WithLabelValues("load", "ok").Inc()
	return c
}

// Visible drops administrative items unless the viewer is a reviewer
func Visible(items []models.RequirementItem, reviewer bool) []models.RequirementItem {
	if reviewer {
		return items
	}
	out := make([]models.RequirementItem, 0, len(items))
	for _, item := range items {
		if !item.IsAdministrative() {
			out = append(out, item)
		}
	}
	return out
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// RequestID returns the request the list belongs to
func (c *Controller) RequestID() int64 {
	return c.requestID
}

// find returns the entry for instanceID. Callers hold c.mu.
func (c *Controller) find(instanceID int64) (*entry, error) {
	for _, e := range c.entries {
		if e.record.InstanceID() == instanceID {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrItemNotFound, instanceID)
}

// gate computes the list-wide inputs of the action rules. Callers hold c.mu.
func (c *Controller) gate() gate {
	records := make([]models.RequirementItem, len(c.entries))
	for i, e := range c.entries {
		records[i] = e.record
	}
	return gate{reviewer: c.viewer.Reviewer, allGraduateAccepted: allGraduateAccepted(records)}
}

// Record returns the current record of an item
func (c *Controller) Record(instanceID int64) (models.RequirementItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.find(instanceID)
	if err != nil {
		return models.RequirementItem{}, err
	}
	return e.record, nil
}

// Upload sends a document for an item with nextStatusId=COMPLETED. On success
// the item takes the server's record; on failure it keeps its previous one.
func (c *Controller) Upload(ctx context.Context, instanceID int64, file models.UploadFile) error {
	ctx, span := utils.TraceBusinessLogic(ctx, "requirements_upload")
	defer span.End()

	c.mu.Lock()
	e, err := c.find(instanceID)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if e.state == StateUploading {
		c.mu.Unlock()
		return ErrItemBusy
	}
	if c.gate().uploadBlocked(e.record) {
		c.mu.Unlock()
		return ErrUploadDisabled
	}
	next, err := Transition(e.state, Event{Kind: EventUploadStarted})
	if err != nil {
		c.mu.Unlock()
		return ErrItemBusy
	}
	e.state = next
	e.outcome = OutcomeNone
	e.clearMessages()
	c.mu.Unlock()

	updated, err := c.gateway.UploadRequirementFile(ctx, c.viewer.Token, c.requestID, instanceID,
		c.viewer.UserID, models.RequirementStatusCompleted, file)
	if err == nil && updated == nil {
		err = ErrEmptyResponse
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"requirement.instance_id": instanceID})
		observability.RequirementActions.WithLabelValues("upload", "error").Inc()
		c.logger.Warn("requirement upload failed",
			zap.Int64("request_id", c.requestID),
			zap.Int64("instance_id", instanceID),
			zap.Error(err))

		e.state, _ = Transition(e.state, Event{Kind: EventUploadFinished, Record: e.record})
		e.outcome = OutcomeUploadError
		e.setError(failureMessage(err, MsgUploadFailed))
		return fmt.Errorf("upload requirement %d: %w", instanceID, err)
	}

	e.record = *updated
	e.state, _ = Transition(e.state, Event{Kind: EventUploadFinished, Record: e.record})
	e.downloading = false
	e.setSuccess(MsgUploaded)
	observability.RequirementActions.WithLabelValues("upload", "ok").Inc()
	return nil
}

// Download fetches an item's document. Files without a name from the server
// are called requisito-<instanceId>.bin.
func (c *Controller) Download(ctx context.Context, instanceID int64) (*models.FileBlob, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "requirements_download")
	defer span.End()

	c.mu.Lock()
	e, err := c.find(instanceID)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if !e.record.HasFile() {
		c.mu.Unlock()
		return nil, ErrNoFile
	}
	if e.downloading || e.state == StateUploading {
		c.mu.Unlock()
		return nil, ErrItemBusy
	}
	e.downloading = true
	e.errorMessage = nil
	c.mu.Unlock()

	blob, err := c.gateway.DownloadRequirementFile(ctx, c.viewer.Token, c.requestID, instanceID)

	c.mu.Lock()
	defer c.mu.Unlock()
	e.downloading = false
	if err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"requirement.instance_id": instanceID})
		observability.RequirementActions.WithLabelValues("download", "error").Inc()
		e.setError(apiclient.MessageOr(err, MsgDownloadFailed))
		return nil, fmt.Errorf("download requirement %d: %w", instanceID, err)
	}
	if blob.FileName == "" {
		blob.FileName = DownloadFileName(instanceID)
	}
	observability.RequirementActions.WithLabelValues("download", "ok").Inc()
	return blob, nil
}

// DownloadFileName is the fallback name of a downloaded document
func DownloadFileName(instanceID int64) string {
	return fmt.Sprintf("requisito-%d.bin", instanceID)
}

// SetComment stores the reviewer's draft comment for an item
func (c *Controller) SetComment(instanceID int64, comment string) error {
	if !c.viewer.Reviewer {
		return ErrNotReviewer
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.find(instanceID)
	if err != nil {
		return err
	}
	if e.state == StateReviewing {
		return ErrItemBusy
	}
	e.reviewComment = comment
	return nil
}

// Review accepts or rejects an item. A nil comment sends the stored draft
// comment; an empty one is sent as null.
func (c *Controller) Review(ctx context.Context, instanceID, nextStatusID int64, comment *string) error {
	if !c.viewer.Reviewer {
		return ErrNotReviewer
	}
	if nextStatusID != models.RequirementStatusAccepted && nextStatusID != models.RequirementStatusRejected {
		return fmt.Errorf("%w: status %d", ErrReviewNotAllowed, nextStatusID)
	}

	ctx, span := utils.TraceBusinessLogic(ctx, "requirements_review")
	defer span.End()

	c.mu.Lock()
	e, err := c.find(instanceID)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if e.state.InFlight() {
		c.mu.Unlock()
		return ErrItemBusy
	}
	if !c.gate().canReview(e.record) {
		c.mu.Unlock()
		return ErrReviewNotAllowed
	}
	next, err := Transition(e.state, Event{Kind: EventReviewStarted})
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: item already %s", ErrReviewNotAllowed, e.state)
	}
	action := reviewReject
	if nextStatusID == models.RequirementStatusAccepted {
		action = reviewAccept
	}
	// A failed decision locks out the other one until the list reloads
	if e.reviewAction != "" && e.reviewAction != action {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s already attempted", ErrReviewNotAllowed, e.reviewAction)
	}
	if comment != nil {
		e.reviewComment = *comment
	}
	text := e.reviewComment
	e.state = next
	e.outcome = OutcomeNone
	e.reviewAction = action
	e.clearMessages()
	c.mu.Unlock()

	payload := models.ReviewPayload{
		NextStatusID:   nextStatusID,
		ReviewReason:   ReviewReason(text),
		ReviewerUserID: c.viewer.UserID,
	}
	updated, err := c.gateway.ReviewRequirement(ctx, c.viewer.Token, c.requestID, instanceID, payload)
	if err == nil && updated == nil {
		err = ErrEmptyResponse
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"requirement.instance_id": instanceID})
		observability.RequirementActions.WithLabelValues("review", "error").Inc()
		c.logger.Warn("requirement review failed",
			zap.Int64("request_id", c.requestID),
			zap.Int64("instance_id", instanceID),
			zap.Error(err))

		e.state, _ = Transition(e.state, Event{Kind: EventReviewFinished, Record: e.record})
		e.outcome = OutcomeReviewError
		e.setError(failureMessage(err, MsgReviewFailed))
		return fmt.Errorf("review requirement %d: %w", instanceID, err)
	}

	e.record = *updated
	e.reviewAction = ""
	e.state, _ = Transition(e.state, Event{Kind: EventReviewFinished, Record: e.record})
	if nextStatusID == models.RequirementStatusAccepted {
		e.setSuccess(MsgAccepted)
	} else {
		e.setSuccess(MsgRejected)
	}
	observability.RequirementActions.WithLabelValues("review", "ok").Inc()
	return nil
}

// ReviewReason maps an empty comment to null
func ReviewReason(comment string) *string {
	if comment == "" {
		return nil
	}
	return &comment
}

func failureMessage(err error, fallback string) string {
	if errors.Is(err, ErrEmptyResponse) {
		return MsgUnexpected
	}
	return apiclient.MessageOr(err, fallback)
}

// ItemView is one requirement as rendered by the browser
type ItemView struct {
	models.RequirementItem
	State          State   `json:"state"`
	Outcome        Outcome `json:"outcome,omitempty"`
	Downloading    bool    `json:"downloading"`
	ErrorMessage   *string `json:"errorMessage"`
	SuccessMessage *string `json:"successMessage"`
	ReviewComment  string  `json:"reviewComment"`
	Observation    *string `json:"observation"`
	Actions        Actions `json:"actions"`
}

// View is the requirement list as rendered by the browser
type View struct {
	RequestID  int64      `json:"requestId"`
	Reviewer   bool       `json:"reviewer"`
	FetchError *string    `json:"fetchError"`
	Items      []ItemView `json:"items"`
}

// View renders the list
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := c.gate()
	items := make([]ItemView, 0, len(c.entries))
	for _, e := range c.entries {
		items = append(items, ItemView{
			RequirementItem: e.record,
			State:           e.state,
			Outcome:         e.outcome,
			Downloading:     e.downloading,
			ErrorMessage:    e.errorMessage,
			SuccessMessage:  e.successMessage,
			ReviewComment:   e.reviewComment,
			Observation:     Observation(e.record),
			Actions:         g.actions(e),
		})
	}
	return View{
		RequestID:  c.requestID,
		Reviewer:   c.viewer.Reviewer,
		FetchError: c.fetchError,
		Items:      items,
	}
}

// Item renders one item
func (c *Controller) Item(instanceID int64) (ItemView, error) {
	for _, item := range c.View().Items {
		if item.InstanceID() == instanceID {
			return item, nil
		}
	}
	return ItemView{}, fmt.Errorf("%w: %d", ErrItemNotFound, instanceID)
}

// busy reports whether any item has an operation in flight
func (c *Controller) busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.state.InFlight() || e.downloading {
			return true
		}
	}
	return false
}

