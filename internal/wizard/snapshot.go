package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/sgeneral-iua/portal-sg/internal/models"
	"github.com/sgeneral-iua/portal-sg/internal/session"
)

// SnapshotStore persists form state under session:<sid>:wizard between calls
type SnapshotStore struct {
	sessions *session.Store
}

// NewSnapshotStore creates a snapshot store on top of the session store
func NewSnapshotStore(sessions *session.Store) *SnapshotStore {
	return &SnapshotStore{sessions: sessions}
}

func snapshotKey(sid string) string {
	return session.ScopedKey(sid, "wizard")
}

func pdfKey(sid string) string {
	return session.ScopedKey(sid, "wizard", "pdf")
}

// Load returns the saved state, or found=false when the form was not opened
func (s *SnapshotStore) Load(ctx context.Context, sid string) (*State, bool, error) {
	var state State
	found, err := s.sessions.GetJSON(ctx, snapshotKey(sid), &state)
	if err != nil || !found {
		return nil, found, err
	}
	return &state, true, nil
}

// Save stores state. Busy flags are never persisted.
func (s *SnapshotStore) Save(ctx context.Context, sid string, state *State) error {
	stored := state.clone()
	stored.Saving = false
	stored.DownloadingPDF = false
	if err := s.sessions.PutJSON(ctx, snapshotKey(sid), stored); err != nil {
		return fmt.Errorf("save form snapshot: %w", err)
	}
	return nil
}

// storedPDF is the JSON form of a generated PDF
type storedPDF struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Content     []byte `json:"content"`
}

// SessionPDFSink keeps the last generated PDF of a session so the browser
// can download it with GET /v1/form/pdf.
type SessionPDFSink struct {
	sessions *session.Store
	sid      string
}

var _ PDFSink = (*SessionPDFSink)(nil)

// NewSessionPDFSink creates a sink for one session
func NewSessionPDFSink(sessions *session.Store, sid string) *SessionPDFSink {
	return &SessionPDFSink{sessions: sessions, sid: sid}
}

// Deliver stores the PDF under the download name
func (s *SessionPDFSink) Deliver(ctx context.Context, fileName string, blob *models.FileBlob) error {
	if blob == nil {
		return errors.New("empty PDF")
	}
	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}
	return s.sessions.PutJSON(ctx, pdfKey(s.sid), storedPDF{
		FileName:    fileName,
		ContentType: contentType,
		Content:     blob.Content,
	})
}

// LoadPDF returns the last PDF delivered for the session
func (s *SnapshotStore) LoadPDF(ctx context.Context, sid string) (*models.FileBlob, bool, error) {
	var stored storedPDF
	found, err := s.sessions.GetJSON(ctx, pdfKey(sid), &stored)
	if err != nil || !found {
		return nil, found, err
	}
	return &models.FileBlob{
		FileName:    stored.FileName,
		ContentType: stored.ContentType,
		Content:     stored.Content,
	}, true, nil
}
