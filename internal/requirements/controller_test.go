package requirements

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sgeneral-iua/portal-sg/internal/apiclient"
	"github.com/sgeneral-iua/portal-sg/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Requirements(ctx context.Context, token string, requestID int64) ([]models.RequirementItem, error) {
	args := m.Called(ctx, token, requestID)
	items, _ := args.Get(0).([]models.RequirementItem)
	return items, args.Error(1)
}

func (m *mockGateway) UploadRequirementFile(ctx context.Context, token string, requestID, instanceID, userID, nextStatusID int64, file models.UploadFile) (*models.RequirementItem, error) {
	args := m.Called(ctx, token, requestID, instanceID, userID, nextStatusID, file)
	item, _ := args.Get(0).(*models.RequirementItem)
	return item, args.Error(1)
}

func (m *mockGateway) DownloadRequirementFile(ctx context.Context, token string, requestID, instanceID int64) (*models.FileBlob, error) {
	args := m.Called(ctx, token, requestID, instanceID)
	blob, _ := args.Get(0).(*models.FileBlob)
	return blob, args.Error(1)
}

func (m *mockGateway) ReviewRequirement(ctx context.Context, token string, requestID, instanceID int64, payload models.ReviewPayload) (*models.RequirementItem, error) {
	args := m.Called(ctx, token, requestID, instanceID, payload)
	item, _ := args.Get(0).(*models.RequirementItem)
	return item, args.Error(1)
}

var (
	graduate = Viewer{UserID: 12, Token: "tok"}
	reviewer = Viewer{UserID: 300, Token: "tok", Reviewer: true}
)

func sampleItems() []models.RequirementItem {
	return []models.RequirementItem{
		record(42, 1, "", ""),
		record(43, models.RequirementStatusCompleted, "titulo.pdf", ""),
		record(44, 0, "", models.ResponsibilityAdministrative),
	}
}

func loaded(t *testing.T, viewer Viewer, items []models.RequirementItem) (*Controller, *mockGateway) {
	t.Helper()
	gw := &mockGateway{}
	gw.On("Requirements", mock.Anything, "tok", int64(3)).Return(items, nil).Once()
	c := Load(context.Background(), gw, viewer, 3, nil)
	require.Nil(t, c.View().FetchError)
	return c, gw
}

func TestLoad_Visibility(t *testing.T) {
	c, _ := loaded(t, graduate, sampleItems())
	view := c.View()
	require.Len(t, view.Items, 2)
	for _, item := range view.Items {
		assert.False(t, item.IsAdministrative())
	}

	c, _ = loaded(t, reviewer, sampleItems())
	assert.Len(t, c.View().Items, 3)
}

func TestLoad_FetchError(t *testing.T) {
	gw := &mockGateway{}
	gw.On("Requirements", mock.Anything, "tok", int64(3)).Return(nil, &apiclient.Error{Status: 500}).Once()

	view := Load(context.Background(), gw, graduate, 3, nil).View()

	require.NotNil(t, view.FetchError)
	assert.Equal(t, MsgFetchFailed, *view.FetchError)
	assert.Empty(t, view.Items)
}

func TestLoad_SeedsReviewComment(t *testing.T) {
	items := sampleItems()
	items[1].RequirementInstance.ReviewReason = ptr("Falta firma")
	c, _ := loaded(t, reviewer, items)

	item, err := c.Item(43)
	require.NoError(t, err)
	assert.Equal(t, "Falta firma", item.ReviewComment)
}

func TestUpload_Success(t *testing.T) {
	c, gw := loaded(t, graduate, sampleItems())
	file := models.UploadFile{FileName: "dni.pdf", ContentType: "application/pdf", Content: []byte("%PDF")}
	updated := record(42, models.RequirementStatusCompleted, "uploads/42.pdf", "")
	gw.On("UploadRequirementFile", mock.Anything, "tok", int64(3), int64(42), int64(12), models.RequirementStatusCompleted, file).
		Return(&updated, nil).Once()

	require.NoError(t, c.Upload(context.Background(), 42, file))

	item, err := c.Item(42)
	require.NoError(t, err)
	assert.Equal(t, StateUploaded, item.State)
	assert.Equal(t, MsgUploaded, *item.SuccessMessage)
	assert.Nil(t, item.ErrorMessage)
	assert.True(t, item.HasFile())
	assert.Equal(t, LabelReplace, item.Actions.Upload.Label)
	gw.AssertExpectations(t)
}

func TestUpload_Failures(t *testing.T) {
	tests := []struct {
		name    string
		item    *models.RequirementItem
		err     error
		message string
	}{
		{"server message", nil, &apiclient.Error{Status: 413, Message: "El archivo supera el tamaño permitido."}, "El archivo supera el tamaño permitido."},
		{"fallback", nil, errors.New("connection reset"), MsgUploadFailed},
		{"empty response", nil, nil, MsgUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, gw := loaded(t, graduate, sampleItems())
			gw.On("UploadRequirementFile", mock.Anything, "tok", int64(3), int64(43), int64(12), models.RequirementStatusCompleted, mock.Anything).
				Return(tt.item, tt.err).Once()

			err := c.Upload(context.Background(), 43, models.UploadFile{FileName: "x.pdf"})
			require.Error(t, err)

			item, _ := c.Item(43)
			assert.Equal(t, StateUploaded, item.State)
			assert.Equal(t, OutcomeUploadError, item.Outcome)
			assert.Equal(t, tt.message, *item.ErrorMessage)
			assert.Equal(t, "titulo.pdf", *item.RequirementInstance.RequirementFilePath)
		})
	}
}

func TestUpload_SecondCallWhileInFlightIsRejected(t *testing.T) {
	c, gw := loaded(t, graduate, sampleItems())
	release := make(chan struct{})
	updated := record(42, models.RequirementStatusCompleted, "uploads/42.pdf", "")
	gw.On("UploadRequirementFile", mock.Anything, "tok", int64(3), int64(42), int64(12), models.RequirementStatusCompleted, mock.Anything).
		Run(func(mock.Arguments) { <-release }).Return(&updated, nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, c.Upload(context.Background(), 42, models.UploadFile{FileName: "a.pdf"}))
	}()

	require.Eventually(t, func() bool {
		item, _ := c.Item(42)
		return item.State == StateUploading
	}, time.Second, time.Millisecond)

	assert.ErrorIs(t, c.Upload(context.Background(), 42, models.UploadFile{FileName: "b.pdf"}), ErrItemBusy)
	item, _ := c.Item(42)
	assert.False(t, item.Actions.Upload.Enabled)
	assert.Equal(t, LabelUploading, item.Actions.Upload.Label)

	close(release)
	wg.Wait()
	gw.AssertNumberOfCalls(t, "UploadRequirementFile", 1)
}

func TestUpload_ReviewerGates(t *testing.T) {
	items := []models.RequirementItem{
		record(42, models.RequirementStatusRejected, "a.pdf", ""),
		record(43, models.RequirementStatusAccepted, "b.pdf", ""),
		record(44, 0, "", models.ResponsibilityAdministrative),
	}
	c, gw := loaded(t, reviewer, items)

	assert.ErrorIs(t, c.Upload(context.Background(), 42, models.UploadFile{}), ErrUploadDisabled)
	assert.ErrorIs(t, c.Upload(context.Background(), 44, models.UploadFile{}), ErrUploadDisabled)
	assert.ErrorIs(t, c.Upload(context.Background(), 99, models.UploadFile{}), ErrItemNotFound)
	gw.AssertNumberOfCalls(t, "UploadRequirementFile", 0)

	// The graduate may still re-upload the rejected document
	c, gw = loaded(t, graduate, items)
	updated := record(42, models.RequirementStatusCompleted, "a-v2.pdf", "")
	gw.On("UploadRequirementFile", mock.Anything, "tok", int64(3), int64(42), int64(12), models.RequirementStatusCompleted, mock.Anything).
		Return(&updated, nil).Once()
	assert.NoError(t, c.Upload(context.Background(), 42, models.UploadFile{}))
}

func TestDownload(t *testing.T) {
	c, gw := loaded(t, graduate, sampleItems())
	gw.On("DownloadRequirementFile", mock.Anything, "tok", int64(3), int64(43)).
		Return(&models.FileBlob{ContentType: "application/pdf", Content: []byte("%PDF")}, nil).Once()

	blob, err := c.Download(context.Background(), 43)
	require.NoError(t, err)
	assert.Equal(t, "requisito-43.bin", blob.FileName)

	item, _ := c.Item(43)
	assert.False(t, item.Downloading)

	_, err = c.Download(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestDownload_KeepsServerName(t *testing.T) {
	c, gw := loaded(t, graduate, sampleItems())
	gw.On("DownloadRequirementFile", mock.Anything, "tok", int64(3), int64(43)).
		Return(&models.FileBlob{FileName: "titulo.pdf"}, nil).Once()

	blob, err := c.Download(context.Background(), 43)
	require.NoError(t, err)
	assert.Equal(t, "titulo.pdf", blob.FileName)
}

func TestDownload_Failure(t *testing.T) {
	c, gw := loaded(t, graduate, sampleItems())
	gw.On("DownloadRequirementFile", mock.Anything, "tok", int64(3), int64(43)).
		Return(nil, errors.New("timeout")).Once()

	_, err := c.Download(context.Background(), 43)
	require.Error(t, err)

	item, _ := c.Item(43)
	assert.Equal(t, MsgDownloadFailed, *item.ErrorMessage)
	assert.False(t, item.Downloading)
	assert.Equal(t, StateUploaded, item.State)
}

func TestReview_Accept(t *testing.T) {
	c, gw := loaded(t, reviewer, sampleItems())
	accepted := record(43, models.RequirementStatusAccepted, "titulo.pdf", "")
	gw.On("ReviewRequirement", mock.Anything, "tok", int64(3), int64(43), models.ReviewPayload{
		NextStatusID:   models.RequirementStatusAccepted,
		ReviewReason:   nil,
		ReviewerUserID: 300,
	}).Return(&accepted, nil).Once()

	require.NoError(t, c.Review(context.Background(), 43, models.RequirementStatusAccepted, nil))

	item, _ := c.Item(43)
	assert.Equal(t, StateAccepted, item.State)
	assert.Equal(t, MsgAccepted, *item.SuccessMessage)
	assert.Equal(t, LabelAccepted, item.Actions.Accept.Label)
	assert.False(t, item.Actions.Accept.Enabled)
	assert.Nil(t, item.Actions.Reject)

	// Terminal items take no further decisions
	assert.ErrorIs(t, c.Review(context.Background(), 43, models.RequirementStatusRejected, nil), ErrReviewNotAllowed)
	gw.AssertExpectations(t)
}

func TestReview_RejectWithStoredComment(t *testing.T) {
	c, gw := loaded(t, reviewer, sampleItems())
	require.NoError(t, c.SetComment(43, "Documento vencido"))

	rejected := record(43, models.RequirementStatusRejected, "titulo.pdf", "")
	rejected.RequirementInstance.ReviewReason = ptr("Documento vencido")
	gw.On("ReviewRequirement", mock.Anything, "tok", int64(3), int64(43), models.ReviewPayload{
		NextStatusID:   models.RequirementStatusRejected,
		ReviewReason:   ptr("Documento vencido"),
		ReviewerUserID: 300,
	}).Return(&rejected, nil).Once()

	require.NoError(t, c.Review(context.Background(), 43, models.RequirementStatusRejected, nil))

	item, _ := c.Item(43)
	assert.Equal(t, StateRejected, item.State)
	assert.Equal(t, MsgRejected, *item.SuccessMessage)
	assert.Equal(t, "Documento vencido", *item.Observation)
	assert.False(t, item.Actions.Upload.Enabled)
}

func TestReview_Failure(t *testing.T) {
	c, gw := loaded(t, reviewer, sampleItems())
	gw.On("ReviewRequirement", mock.Anything, "tok", int64(3), int64(43), mock.Anything).
		Return(nil, &apiclient.Error{Status: 409, Message: "El requisito ya fue revisado."}).Once()

	err := c.Review(context.Background(), 43, models.RequirementStatusAccepted, ptr("ok"))
	require.Error(t, err)

	item, _ := c.Item(43)
	assert.Equal(t, StateUploaded, item.State)
	assert.Equal(t, OutcomeReviewError, item.Outcome)
	assert.Equal(t, "El requisito ya fue revisado.", *item.ErrorMessage)
	assert.Equal(t, "ok", item.ReviewComment)
	assert.True(t, item.Actions.Accept.Enabled)
	assert.False(t, item.Actions.Reject.Enabled)
}

func TestReview_FailedRejectKeepsAcceptDisabled(t *testing.T) {
	ctx := context.Background()
	c, gw := loaded(t, reviewer, sampleItems())
	gw.On("ReviewRequirement", mock.Anything, "tok", int64(3), int64(43), mock.Anything).
		Return(nil, errors.New("connection reset")).Once()

	require.Error(t, c.Review(ctx, 43, models.RequirementStatusRejected, nil))

	item, _ := c.Item(43)
	assert.Equal(t, StateUploaded, item.State)
	assert.False(t, item.Actions.Accept.Enabled)
	assert.Equal(t, LabelAccept, item.Actions.Accept.Label)
	require.NotNil(t, item.Actions.Reject)
	assert.True(t, item.Actions.Reject.Enabled)

	assert.ErrorIs(t, c.Review(ctx, 43, models.RequirementStatusAccepted, nil), ErrReviewNotAllowed)

	// Retrying the same decision is allowed and clears the lock on success
	rejected := record(43, models.RequirementStatusRejected, "titulo.pdf", "")
	gw.On("ReviewRequirement", mock.Anything, "tok", int64(3), int64(43), mock.Anything).Return(&rejected, nil).Once()
	require.NoError(t, c.Review(ctx, 43, models.RequirementStatusRejected, nil))

	item, _ = c.Item(43)
	assert.Equal(t, StateRejected, item.State)
	gw.AssertNumberOfCalls(t, "ReviewRequirement", 2)
}

func TestReview_Rejections(t *testing.T) {
	ctx := context.Background()

	c, _ := loaded(t, graduate, sampleItems())
	assert.ErrorIs(t, c.Review(ctx, 43, models.RequirementStatusAccepted, nil), ErrNotReviewer)
	assert.ErrorIs(t, c.SetComment(43, "x"), ErrNotReviewer)

	c, gw := loaded(t, reviewer, sampleItems())
	assert.ErrorIs(t, c.Review(ctx, 42, models.RequirementStatusAccepted, nil), ErrReviewNotAllowed)
	assert.ErrorIs(t, c.Review(ctx, 44, models.RequirementStatusAccepted, nil), ErrReviewNotAllowed)
	assert.ErrorIs(t, c.Review(ctx, 43, models.RequirementStatusCompleted, nil), ErrReviewNotAllowed)
	gw.AssertNumberOfCalls(t, "ReviewRequirement", 0)
}

func TestReviewReason(t *testing.T) {
	assert.Nil(t, ReviewReason(""))
	assert.Equal(t, "Ilegible", *ReviewReason("Ilegible"))
}
