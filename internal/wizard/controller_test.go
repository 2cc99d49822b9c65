package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sgeneral-iua/portal-sg/internal/apiclient"
	"github.com/sgeneral-iua/portal-sg/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu        sync.Mutex
	formData  *models.FormData
	formErr   error
	update    func(payload models.UpdateFormPayload) (*models.FormData, error)
	pdf       *models.FileBlob
	pdfErr    error
	payloads  []models.UpdateFormPayload
	pdfCalls  int
	blockSave chan struct{}
}

func (f *fakeGateway) FormData(_ context.Context, _ string, _ int64) (*models.FormData, error) {
	return f.formData, f.formErr
}

func (f *fakeGateway) UpdateForm(_ context.Context, token string, _ int64, payload models.UpdateFormPayload) (*models.FormData, error) {
	if f.blockSave != nil {
		<-f.blockSave
	}
	f.mu.Lock()
	f.payloads = append(f.payloads, payload)
	f.mu.Unlock()
	if f.update != nil {
		return f.update(payload)
	}
	return nil, nil
}

func (f *fakeGateway) FormPDF(_ context.Context, _ string, _ int64) (*models.FileBlob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pdfCalls++
	return f.pdf, f.pdfErr
}

type memorySink struct {
	name string
	blob *models.FileBlob
	err  error
}

func (m *memorySink) Deliver(_ context.Context, fileName string, blob *models.FileBlob) error {
	if m.err != nil {
		return m.err
	}
	m.name = fileName
	m.blob = blob
	return nil
}

func validState() *State {
	state := NewState(12, &models.FormData{
		Person: models.FormPerson{IDPerson: 5, LastName: "Pérez", FirstName: "Juan", DocumentNumber: "30123456"},
		Catalogs: models.FormCatalogs{
			Forces: []models.Force{{IDForce: 1, ForceName: ptr("Ejército")}, {IDForce: 2, ForceName: ptr("Armada")}},
			MilitaryRanks: []models.MilitaryRank{
				{IDMilitaryRank: 5, ForceID: ptr(int64(1))},
				{IDMilitaryRank: 6, ForceID: ptr(int64(1))},
				{IDMilitaryRank: 9, ForceID: ptr(int64(2))},
			},
		},
	})
	return state
}

func newTestController(state *State, gateway *fakeGateway, sink PDFSink) *Controller {
	return NewController(state, Deps{Gateway: gateway, Sink: sink, Token: "tok"})
}

func TestGoToStep_Clamps(t *testing.T) {
	c := newTestController(validState(), &fakeGateway{}, nil)

	c.GoToStep(10)
	assert.Equal(t, LastStep(), c.Snapshot().CurrentStepIndex)

	c.GoToStep(-3)
	assert.Equal(t, 0, c.Snapshot().CurrentStepIndex)

	c.GoToStep(2)
	assert.Equal(t, 2, c.Snapshot().CurrentStepIndex)
}

func TestGoToStep_ClearsMessages(t *testing.T) {
	state := validState()
	state.setError("algo")
	state.FieldErrors = map[string]string{"person.firstName": "x"}
	c := newTestController(state, &fakeGateway{}, nil)

	c.GoToStep(1)

	snap := c.Snapshot()
	assert.Nil(t, snap.ErrorMessage)
	assert.Nil(t, snap.SuccessMessage)
	assert.Nil(t, snap.FieldErrors)
}

func TestPrevious_DoesNotSave(t *testing.T) {
	gateway := &fakeGateway{}
	state := validState()
	state.CurrentStepIndex = 2
	state.Person.FirstName = ""
	c := newTestController(state, gateway, nil)

	c.Previous()
	assert.Equal(t, 1, c.Snapshot().CurrentStepIndex)
	c.Previous()
	c.Previous()
	assert.Equal(t, 0, c.Snapshot().CurrentStepIndex)
	assert.Empty(t, gateway.payloads)
}

func TestSaveCurrentStep_ReplacesStateWithServerRecord(t *testing.T) {
	gateway := &fakeGateway{update: func(payload models.UpdateFormPayload) (*models.FormData, error) {
		return &models.FormData{
			Person:  models.FormPerson{IDPerson: 5, LastName: "PÉREZ", FirstName: "JUAN", DocumentNumber: "30123456"},
			Contact: &models.FormContact{IDContact: 3, EmailAddress: ptr("juan@example.com")},
		}, nil
	}}
	state := validState()
	state.Contact.EmailAddress = ptr(" juan@example.com ")
	state.Graduate.GraduateType = ptr(models.GraduateTypeCivil)
	c := newTestController(state, gateway, nil)

	require.NoError(t, c.SaveCurrentStep(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, "PÉREZ", snap.Person.LastName)
	assert.Equal(t, int64(3), snap.Contact.IDContact)
	// Sections missing from the answer go back to defaults
	assert.Nil(t, snap.Graduate.GraduateType)
	assert.Equal(t, "", *snap.Address.Street)
	assert.Equal(t, MsgSaved, *snap.SuccessMessage)
	assert.False(t, snap.Saving)

	require.Len(t, gateway.payloads, 1)
	assert.Equal(t, "juan@example.com", *gateway.payloads[0].Contact.EmailAddress)
}

func TestSaveCurrentStep_EmptyAnswerKeepsLocalState(t *testing.T) {
	state := validState()
	c := newTestController(state, &fakeGateway{}, nil)

	require.NoError(t, c.SaveCurrentStep(context.Background()))
	assert.Equal(t, "Juan", c.Snapshot().Person.FirstName)
}

func TestSaveCurrentStep_FailureKeepsTypedValues(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message", &apiclient.Error{Status: 422, Message: "El documento ya está registrado."}, "El documento ya está registrado."},
		{"no message", &apiclient.Error{Status: 500}, MsgSaveFailed},
		{"network", errors.New("connection refused"), MsgSaveFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := &fakeGateway{update: func(models.UpdateFormPayload) (*models.FormData, error) { return nil, tt.err }}
			state := validState()
			state.Person.FirstName = "Juana"
			c := newTestController(state, gateway, nil)

			err := c.SaveCurrentStep(context.Background())
			require.Error(t, err)

			snap := c.Snapshot()
			assert.Equal(t, tt.want, *snap.ErrorMessage)
			assert.Equal(t, "Juana", snap.Person.FirstName)
			assert.Equal(t, 0, snap.CurrentStepIndex)
		})
	}
}

func TestSaveCurrentStep_ValidationBlocksSubmission(t *testing.T) {
	gateway := &fakeGateway{}
	state := validState()
	state.Person.DocumentNumber = "30.123.456"
	state.Contact.EmailAddress = ptr("no-es-correo")
	c := newTestController(state, gateway, nil)

	err := c.SaveCurrentStep(context.Background())
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Empty(t, gateway.payloads)

	snap := c.Snapshot()
	assert.Equal(t, MsgInvalidInput, *snap.ErrorMessage)
	assert.Contains(t, snap.FieldErrors, "person.documentNumber")
	assert.Contains(t, snap.FieldErrors, "contact.emailAddress")
}

func TestNext_AdvancesAfterSave(t *testing.T) {
	gateway := &fakeGateway{}
	c := newTestController(validState(), gateway, nil)

	require.NoError(t, c.Next(context.Background()))
	assert.Equal(t, 1, c.Snapshot().CurrentStepIndex)
	assert.Len(t, gateway.payloads, 1)
	assert.Zero(t, gateway.pdfCalls)
}

func TestNext_DoesNotAdvanceOnFailure(t *testing.T) {
	gateway := &fakeGateway{update: func(models.UpdateFormPayload) (*models.FormData, error) {
		return nil, &apiclient.Error{Status: 500}
	}}
	c := newTestController(validState(), gateway, nil)

	require.Error(t, c.Next(context.Background()))
	assert.Equal(t, 0, c.Snapshot().CurrentStepIndex)
}

func TestNext_LastStepGeneratesPDF(t *testing.T) {
	gateway := &fakeGateway{pdf: &models.FileBlob{ContentType: "application/pdf", Content: []byte("%PDF")}}
	sink := &memorySink{}
	state := validState()
	c := newTestController(state, gateway, sink)
	c.GoToStep(LastStep())

	require.NoError(t, c.ApplyDraft(context.Background(), Draft{Graduate: &GraduateDraft{
		GraduateType:   TextInput{Set: true, Value: ptr("Militar")},
		ForceID:        NumberInput{Set: true, Value: ptr(int64(1))},
		MilitaryRankID: NumberInput{Set: true, Value: ptr(int64(5))},
	}}))

	require.NoError(t, c.Next(context.Background()))

	require.Len(t, gateway.payloads, 1)
	graduate := gateway.payloads[0].Graduate
	require.NotNil(t, graduate)
	assert.Equal(t, models.GraduateTypeMilitar, graduate.GraduateType)
	assert.Equal(t, int64(5), *graduate.MilitaryRankID)
	assert.Equal(t, int64(1), *graduate.ForceID)

	snap := c.Snapshot()
	assert.True(t, snap.Completed)
	assert.Equal(t, MsgPDFReady, *snap.SuccessMessage)
	assert.Equal(t, "formulario-12.pdf", sink.name)
	assert.Equal(t, []byte("%PDF"), sink.blob.Content)

	// Completed disables further advancement
	assert.ErrorIs(t, c.Next(context.Background()), ErrCompleted)
	assert.Len(t, gateway.payloads, 1)
}

func TestNext_PDFFailureLeavesFormOpen(t *testing.T) {
	tests := []struct {
		name    string
		gateway *fakeGateway
		sink    *memorySink
		want    string
	}{
		{
			name:    "server message",
			gateway: &fakeGateway{pdfErr: &apiclient.Error{Status: 503, Message: "Servicio de PDF no disponible."}},
			sink:    &memorySink{},
			want:    "Servicio de PDF no disponible.",
		},
		{
			name:    "fallback",
			gateway: &fakeGateway{pdfErr: errors.New("timeout")},
			sink:    &memorySink{},
			want:    MsgPDFFailed,
		},
		{
			name:    "sink failure",
			gateway: &fakeGateway{pdf: &models.FileBlob{}},
			sink:    &memorySink{err: errors.New("redis down")},
			want:    MsgPDFFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(validState(), tt.gateway, tt.sink)
			c.GoToStep(LastStep())

			require.Error(t, c.Next(context.Background()))

			snap := c.Snapshot()
			assert.False(t, snap.Completed)
			assert.False(t, snap.DownloadingPDF)
			assert.Equal(t, tt.want, *snap.ErrorMessage)
		})
	}
}

func TestNext_ReentrantCallIsRejected(t *testing.T) {
	gateway := &fakeGateway{blockSave: make(chan struct{})}
	c := newTestController(validState(), gateway, nil)

	done := make(chan error, 1)
	go func() { done <- c.Next(context.Background()) }()

	require.Eventually(t, func() bool { return c.Snapshot().Saving }, time.Second, time.Millisecond)
	assert.ErrorIs(t, c.Next(context.Background()), ErrBusy)
	assert.ErrorIs(t, c.SaveCurrentStep(context.Background()), ErrBusy)
	assert.Equal(t, LabelSaving, c.View().NextLabel)

	close(gateway.blockSave)
	require.NoError(t, <-done)
	assert.Equal(t, 1, c.Snapshot().CurrentStepIndex)
	assert.Len(t, gateway.payloads, 1)
}

func TestOpen(t *testing.T) {
	gateway := &fakeGateway{formData: &models.FormData{Person: models.FormPerson{FirstName: "Ana"}}}
	state := Open(context.Background(), gateway, "tok", 7, nil)
	assert.Equal(t, int64(7), state.UserID)
	assert.Equal(t, "Ana", state.Person.FirstName)
	assert.Nil(t, state.ErrorMessage)

	failing := &fakeGateway{formErr: errors.New("boom")}
	state = Open(context.Background(), failing, "tok", 7, nil)
	assert.Equal(t, MsgLoadFailed, *state.ErrorMessage)
	assert.Equal(t, "", state.Person.FirstName)
}

func TestOnSavedHook(t *testing.T) {
	var steps []string
	c := NewController(validState(), Deps{
		Gateway: &fakeGateway{},
		OnSaved: func(_ context.Context, step string, _ models.UpdateFormPayload) { steps = append(steps, step) },
	})

	require.NoError(t, c.Next(context.Background()))
	require.NoError(t, c.Next(context.Background()))
	assert.Equal(t, []string{StepPersonal, StepContact}, steps)
}
