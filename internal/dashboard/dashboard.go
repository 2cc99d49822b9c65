// Package dashboard builds the landing page of a signed-in user: identity
// header, action menu and the summary of each request in progress.
package dashboard

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sgeneral-iua/portal-sg/internal/logging"
	"github.com/sgeneral-iua/portal-sg/internal/models"
	"github.com/sgeneral-iua/portal-sg/internal/utils"
	"go.uber.org/zap"
)

// Fallback labels
const (
	FallbackDisplayName = "Usuario"
	FallbackInitials    = "US"
	FallbackDocument    = "Documento no disponible"
	FallbackUsername    = "Sin usuario"
	FallbackProgram     = "Programa no disponible"
	FallbackFaculty     = "Facultad no disponible"
	FallbackPlan        = "Plan no disponible"
	FallbackStatus      = "Sin estado"
	FallbackOption      = "Opción disponible"
)

// Status badge tones
const (
	ToneReview   = "review"
	ToneApproved = "approved"
	ToneObserved = "observed"
	ToneNeutral  = "neutral"
)

var statusTones = map[string]string{
	"En revisión": ToneReview,
	"Aprobado":    ToneApproved,
	"Observado":   ToneObserved,
}

// FallbackMenuOptions is shown when the API offers no menu
var FallbackMenuOptions = []models.MenuOption{
	{
		ID:          1,
		Name:        strPtr("Iniciar solicitud"),
		Description: strPtr("Permite dar inicio al trámite para la emisión del título correspondiente a una carrera finalizada."),
	},
	{
		ID:          2,
		Name:        strPtr("Buscar solicitud"),
		Description: strPtr("Consulte el estado actual de una solicitud iniciada previamente."),
	},
	{
		ID:          3,
		Name:        strPtr("Subsanar solicitud"),
		Description: strPtr("Acceda para corregir o completar datos requeridos para la continuidad del trámite."),
	},
}

func strPtr(s string) *string { return &s }

// Gateway fetches the raw dashboard data
type Gateway interface {
	Dashboard(ctx context.Context, token string, userID int64, roleID *int64) (*models.DashboardData, error)
}

// Profile is the identity header
type Profile struct {
	DisplayName    string `json:"displayName"`
	Initials       string `json:"initials"`
	DocumentNumber string `json:"documentNumber"`
	Username       string `json:"username"`
}

// MenuItem is an entry of the action menu
type MenuItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Link        *string `json:"link"`
}

// RequestRow is a request summary ready to render
type RequestRow struct {
	IDRequest             int64   `json:"idRequest"`
	Label                 string  `json:"label"`
	AcademicProgram       string  `json:"academicProgram"`
	Faculty               string  `json:"faculty"`
	Plan                  string  `json:"plan"`
	GeneratedAt           *string `json:"generatedAt"`
	Status                string  `json:"status"`
	StatusTone            string  `json:"statusTone"`
	StatusDescription     *string `json:"statusDescription"`
	NextAction            string  `json:"nextAction"`
	TotalRequirements     int64   `json:"totalRequirements"`
	CompletedRequirements int64   `json:"completedRequirements"`
	HasRequirementsData   bool    `json:"hasRequirementsData"`
	CompletionPercentage  float64 `json:"completionPercentage"`
	ShowFormLink          bool    `json:"showFormLink"`
	RequirementsLink      *string `json:"requirementsLink"`
}

// Dashboard is the body of GET /v1/dashboard
type Dashboard struct {
	Profile     Profile      `json:"profile"`
	MenuOptions []MenuItem   `json:"menuOptions"`
	Requests    []RequestRow `json:"requests"`
	Degraded    bool         `json:"degraded"`
}

// Build fetches the dashboard data for the session and derives every label.
// A failed fetch still returns a dashboard with the built-in menu and no
// requests, flagged as degraded.
func Build(ctx context.Context, gateway Gateway, session *models.Session, logger *logging.SafeLogger) *Dashboard {
	ctx, span := utils.TraceBusinessLogic(ctx, "dashboard_build")
	defer span.End()

	out := &Dashboard{
		Profile:  ProfileOf(session.User()),
		Requests: []RequestRow{},
	}

	data, err := gateway.Dashboard(ctx, session.AccessToken, session.UserID, session.RoleID)
	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		logger.Warn("dashboard fetch failed, using fallback menu",
			zap.Int64("user_id", session.UserID),
			zap.Error(err))
		out.Degraded = true
	}
	if data == nil {
		data = &models.DashboardData{}
	}

	options := data.MenuOptions
	if len(options) == 0 {
		options = FallbackMenuOptions
	}
	out.MenuOptions = Menu(options)

	for _, summary := range data.Requests {
		out.Requests = append(out.Requests, Row(summary))
	}
	return out
}

// ProfileOf derives the identity header from the session user
func ProfileOf(u models.SessionUser) Profile {
	first, last := trimmed(u.FirstName), trimmed(u.LastName)

	return Profile{
		DisplayName:    DisplayName(first, last, u.Username),
		Initials:       Initials(first, last, u.Username),
		DocumentNumber: valueOr(u.DocumentNumber, FallbackDocument),
		Username:       nonEmptyOr(u.Username, FallbackUsername),
	}
}

// DisplayName joins first and last name, falling back to the username
func DisplayName(first, last, username string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{first, last} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if name := strings.Join(parts, " "); name != "" {
		return name
	}
	return nonEmptyOr(username, FallbackDisplayName)
}

// Initials takes the first letter of each name, or the first two letters of
// the username
func Initials(first, last, username string) string {
	var b strings.Builder
	for _, p := range []string{first, last} {
		if r := []rune(p); len(r) > 0 {
			b.WriteRune(r[0])
		}
	}
	if b.Len() > 0 {
		return strings.ToUpper(b.String())
	}
	if r := []rune(username); len(r) > 0 {
		if len(r) > 2 {
			r = r[:2]
		}
		return strings.ToUpper(string(r))
	}
	return FallbackInitials
}

// Menu renders menu options. Only "Iniciar solicitud" links anywhere.
func Menu(options []models.MenuOption) []MenuItem {
	items := make([]MenuItem, 0, len(options))
	for _, o := range options {
		item := MenuItem{
			ID:          o.ID,
			Name:        valueOr(o.Name, FallbackOption),
			Description: o.Description,
		}
		if o.ID == 1 {
			item.Link = strPtr("/requests/new")
		}
		items = append(items, item)
	}
	return items
}

// Row derives the labels and progress of one request
func Row(r models.RequestSummary) RequestRow {
	total := int64Or(r.TotalRequirements)
	completed := int64Or(r.CompletedRequirements)
	status := valueOr(r.StatusName, FallbackStatus)

	row := RequestRow{
		IDRequest:             r.IDRequest,
		Label:                 valueOr(r.RequestTypeName, fmt.Sprintf("Solicitud #%d", r.IDRequest)),
		AcademicProgram:       valueOr(r.AcademicProgramName, FallbackProgram),
		Faculty:               valueOr(r.FacultyName, FallbackFaculty),
		Plan:                  valueOr(r.PlanName, FallbackPlan),
		GeneratedAt:           r.GeneratedAt,
		Status:                status,
		StatusTone:            StatusTone(status),
		StatusDescription:     r.StatusDescription,
		NextAction:            r.NextAction,
		TotalRequirements:     total,
		CompletedRequirements: completed,
		HasRequirementsData:   total > 0 || completed > 0,
		CompletionPercentage:  CompletionPercentage(completed, total),
		ShowFormLink:          ShowFormLink(r.StatusName, r.NextAction),
	}
	if r.NextAction != "" {
		row.RequirementsLink = strPtr(fmt.Sprintf("/requests/%d/requirements", r.IDRequest))
	}
	return row
}

// CompletionPercentage is completed/total as a percentage capped at 100
func CompletionPercentage(completed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Min(float64(completed)/float64(total)*100, 100)
}

// ShowFormLink reports whether the request still waits for the form: its
// status is pending and the next step is not about requirements.
func ShowFormLink(statusName *string, nextAction string) bool {
	status := strings.ToLower(orEmpty(statusName))
	return strings.Contains(status, "pend") && !strings.Contains(strings.ToLower(nextAction), "requisit")
}

// StatusTone maps a status name to its badge tone
func StatusTone(status string) string {
	if tone, ok := statusTones[status]; ok {
		return tone
	}
	return ToneNeutral
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func trimmed(s *string) string {
	return strings.TrimSpace(orEmpty(s))
}

func valueOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func nonEmptyOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func int64Or(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}
