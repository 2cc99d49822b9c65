package requirements

import (
	"strings"

	"github.com/sgeneral-iua/portal-sg/internal/models"
)

// Action labels
const (
	LabelDownload    = "Descargar archivo"
	LabelDownloading = "Descargando..."
	LabelUpload      = "Subir archivo"
	LabelReplace     = "Reemplazar archivo"
	LabelUploading   = "Subiendo archivo..."
	LabelAccept      = "Marcar como aceptado"
	LabelAccepted    = "Aceptado"
	LabelReject      = "Marcar como rechazado"
	LabelSaving      = "Guardando..."
)

// MsgObservationFallback is shown for rejected items without a reason
const MsgObservationFallback = "Revisá este documento y volvé a cargarlo."

const (
	reviewAccept = "accept"
	reviewReject = "reject"
)

// Action is one control of a requirement card
type Action struct {
	Enabled bool   `json:"enabled"`
	Label   string `json:"label"`
}

// Actions is the control set of an item. Nil members are not offered.
type Actions struct {
	Download *Action `json:"download,omitempty"`
	Upload   Action  `json:"upload"`
	Accept   *Action `json:"accept,omitempty"`
	Reject   *Action `json:"reject,omitempty"`
}

// gate carries what action rules need besides the item itself
type gate struct {
	reviewer            bool
	allGraduateAccepted bool
}

// allGraduateAccepted reports whether there is at least one graduate item and
// every graduate item was accepted
func allGraduateAccepted(items []models.RequirementItem) bool {
	seen := false
	for _, item := range items {
		if item.IsAdministrative() {
			continue
		}
		if !item.IsAccepted() {
			return false
		}
		seen = true
	}
	return seen
}

// uploadBlocked applies the reviewer rules: rejected graduate documents stay
// rejected, and administrative documents wait until every graduate document
// is accepted.
func (g gate) uploadBlocked(item models.RequirementItem) bool {
	if !g.reviewer {
		return false
	}
	if item.IsAdministrative() {
		return !g.allGraduateAccepted
	}
	return item.IsRejected()
}

// canReview reports whether review controls are shown for the item
func (g gate) canReview(item models.RequirementItem) bool {
	return g.reviewer && item.HasFile() && !item.IsAdministrative()
}

func (g gate) actions(e *entry) Actions {
	item := e.record
	uploading := e.state == StateUploading
	reviewing := e.state == StateReviewing

	var out Actions
	if item.HasFile() {
		label := LabelDownload
		if e.downloading {
			label = LabelDownloading
		}
		out.Download = &Action{Enabled: !uploading && !e.downloading, Label: label}
	}

	uploadLabel := LabelUpload
	switch {
	case uploading:
		uploadLabel = LabelUploading
	case item.HasFile():
		uploadLabel = LabelReplace
	}
	out.Upload = Action{Enabled: !uploading && !g.uploadBlocked(item), Label: uploadLabel}

	if !g.canReview(item) {
		return out
	}

	accepted, rejected := item.IsAccepted(), item.IsRejected()
	acceptLabel := LabelAccept
	switch {
	case reviewing && e.reviewAction == reviewAccept:
		acceptLabel = LabelSaving
	case accepted:
		acceptLabel = LabelAccepted
	}
	out.Accept = &Action{
		Enabled: !reviewing && !accepted && !rejected && e.reviewAction != reviewReject,
		Label:   acceptLabel,
	}

	if !accepted && !rejected {
		rejectLabel := LabelReject
		if reviewing && e.reviewAction == reviewReject {
			rejectLabel = LabelSaving
		}
		out.Reject = &Action{
			Enabled: !reviewing && e.reviewAction != reviewAccept,
			Label:   rejectLabel,
		}
	}
	return out
}

// Observation is the reviewer note shown under an item, or nil when the item
// was neither rejected nor commented.
func Observation(item models.RequirementItem) *string {
	reason := item.RequirementInstance.ReviewReason
	if !item.IsRejected() && (reason == nil || *reason == "") {
		return nil
	}
	text := MsgObservationFallback
	if reason != nil && len(strings.TrimSpace(*reason)) > 0 {
		text = *reason
	}
	return &text
}
