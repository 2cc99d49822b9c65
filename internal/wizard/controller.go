package wizard

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

var (
	// ErrCompleted is returned by Next once the PDF has been generated
	ErrCompleted = errors.New("form already completed")
	// ErrBusy is returned while a save or PDF generation is in flight
	ErrBusy = errors.New("form operation in progress")
	// ErrInvalid is returned when client-side validation blocks a save
	ErrInvalid = errors.New("form has invalid fields")
)

// Gateway is the part of the remote API the wizard needs
type Gateway interface {
	FormData(ctx context.Context, token string, userID int64) (*models.FormData, error)
	UpdateForm(ctx context.Context, token string, userID int64, payload models.UpdateFormPayload) (*models.FormData, error)
	FormPDF(ctx context.Context, token string, userID int64) (*models.FileBlob, error)
}

// Locations resolves the address cascade
type Locations interface {
	Countries(ctx context.Context) ([]models.Country, error)
	Provinces(ctx context.Context, countryID int64) ([]models.Province, error)
	Cities(ctx context.Context, provinceID int64) ([]models.City, error)
}

// PDFSink receives the generated form PDF
type PDFSink interface {
	Deliver(ctx context.Context, fileName string, blob *models.FileBlob) error
}

// SaveHook is called after a successful save with the payload that was sent
type SaveHook func(ctx context.Context, step string, payload models.UpdateFormPayload)

// Deps are the collaborators of a Controller
type Deps struct {
	Gateway   Gateway
	Locations Locations
	Sink      PDFSink
	Token     string
	Logger    *logging.SafeLogger
	OnSaved   SaveHook
}

// Controller sequences the steps of one user's form. It is safe for
// concurrent use; a second save or Next while one is running returns ErrBusy.
type Controller struct {
	mu     sync.Mutex
	state  *State
	deps   Deps
	logger *logging.SafeLogger
}

// Open fetches the user's form record and builds a fresh state. A failed
// fetch still yields a usable state with default records and an error message.
func Open(ctx context.Context, gateway Gateway, token string, userID int64, logger *logging.SafeLogger) *State {
	data, err := gateway.FormData(ctx, token, userID)
	state := NewState(userID, data)
	if err != nil {
		logger.Warn("failed to load form data", zap.Int64("user_id", userID), zap.Error(err))
		state.setError(MsgLoadFailed)
	}
	return state
}

// NewController wraps state. The controller owns state from here on.
func NewController(state *State, deps Deps) *Controller {
	if state == nil {
		state = NewState(0, nil)
	}
	return &Controller{
		state:  state,
		deps:   deps,
		logger: deps.Logger.Named("wizard"),
	}
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() *State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// GoToStep moves to index, clamped to the valid range, and clears messages
func (c *Controller) GoToStep(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.goToStep(index)
}

func (c *Controller) goToStep(index int) {
	c.state.CurrentStepIndex = ClampStep(index)
	c.state.clearMessages()
}

// Previous moves back one step without saving or validating
func (c *Controller) Previous() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.goToStep(c.state.CurrentStepIndex - 1)
}

// SaveCurrentStep validates and persists all four records. On success the
// local records are replaced by the server's canonical version; on failure
// they keep the values the user typed.
func (c *Controller) SaveCurrentStep(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Saving || c.state.DownloadingPDF {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state.Saving = true
	c.mu.Unlock()

	err := c.save(ctx)

	c.mu.Lock()
	c.state.Saving = false
	c.mu.Unlock()
	return err
}

// save runs with Saving already set by the caller, who also clears it
func (c *Controller) save(ctx context.Context) error {
	ctx, span := utils.TraceBusinessLogic(ctx, "wizard_save")
	defer span.End()

	c.mu.Lock()
	step := Steps[c.state.CurrentStepIndex].ID
	c.state.clearMessages()

	if result := ValidateState(c.state); !result.IsValid {
		c.state.FieldErrors = result.Fields()
		c.state.setError(MsgInvalidInput)
		c.mu.Unlock()
		observability.WizardStepSaves.WithLabelValues(step, "invalid").Inc()
		return ErrInvalid
	}

	userID := c.state.UserID
	payload := BuildPayload(c.state)
	c.mu.Unlock()

	data, err := c.deps.Gateway.UpdateForm(ctx, c.deps.Token, userID, payload)
	if err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"wizard.step": step})
		observability.WizardStepSaves.WithLabelValues(step, "error").Inc()
		c.logger.Warn("form save failed",
			zap.Int64("user_id", userID),
			zap.String("step", step),
			zap.Error(err))

		c.mu.Lock()
		c.state.setError(apiclient.MessageOr(err, MsgSaveFailed))
		c.mu.Unlock()
		return fmt.Errorf("save %s step: %w", step, err)
	}

	c.mu.Lock()
	if data != nil {
		c.state.replace(data)
	}
	c.state.setSuccess(MsgSaved)
	c.mu.Unlock()
	observability.WizardStepSaves.WithLabelValues(step, "ok").Inc()

	if c.deps.OnSaved != nil {
		c.deps.OnSaved(ctx, step, payload)
	}
	return nil
}

// Next saves the current step and advances. On the last step it generates
// the PDF, hands it to the sink and marks the form completed.
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.state.Completed:
		c.mu.Unlock()
		return ErrCompleted
	case c.state.Saving || c.state.DownloadingPDF:
		c.mu.Unlock()
		return ErrBusy
	}
	c.state.Saving = true
	c.mu.Unlock()

	err := c.save(ctx)

	c.mu.Lock()
	c.state.Saving = false
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if !c.state.IsLastStep() {
		c.state.CurrentStepIndex = ClampStep(c.state.CurrentStepIndex + 1)
		c.mu.Unlock()
		return nil
	}
	c.state.DownloadingPDF = true
	userID := c.state.UserID
	c.mu.Unlock()

	err = c.generatePDF(ctx, userID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.DownloadingPDF = false
	if err != nil {
		c.state.setError(apiclient.MessageOr(err, MsgPDFFailed))
		c.logger.Warn("form PDF failed", zap.Int64("user_id", userID), zap.Error(err))
		return err
	}
	c.state.setSuccess(MsgPDFReady)
	c.state.Completed = true
	return nil
}

func (c *Controller) generatePDF(ctx context.Context, userID int64) error {
	ctx, span := utils.TraceBusinessLogic(ctx, "wizard_pdf")
	defer span.End()

	blob, err := c.deps.Gateway.FormPDF(ctx, c.deps.Token, userID)
	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		return fmt.Errorf("generate form PDF: %w", err)
	}
	if c.deps.Sink == nil {
		return nil
	}
	if err := c.deps.Sink.Deliver(ctx, PDFFileName(userID), blob); err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		return fmt.Errorf("deliver form PDF: %w", err)
	}
	return nil
}

// PDFFileName is the download name of a user's form PDF
func PDFFileName(userID int64) string {
	return fmt.Sprintf("formulario-%d.pdf", userID)
}
