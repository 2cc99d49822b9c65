package wizard

import "github.com/sgeneral-iua/portal-sg/internal/models"

// Button labels
const (
	LabelNext    = "Siguiente"
	LabelFinish  = "Finalizar y generar PDF"
	LabelSaving  = "Guardando..."
	LabelProcess = "Procesando..."
)

// StepView is a step header as rendered by the browser
type StepView struct {
	Step
	Index  int  `json:"index"`
	Active bool `json:"active"`
	Done   bool `json:"done"`
}

// View is what the browser renders for the form
type View struct {
	Steps            []StepView            `json:"steps"`
	CurrentStepIndex int                   `json:"currentStepIndex"`
	CurrentStep      string                `json:"currentStep"`
	IsLastStep       bool                  `json:"isLastStep"`
	Saving           bool                  `json:"saving"`
	DownloadingPDF   bool                  `json:"downloadingPdf"`
	Completed        bool                  `json:"completed"`
	CanGoBack        bool                  `json:"canGoBack"`
	CanAdvance       bool                  `json:"canAdvance"`
	NextLabel        string                `json:"nextLabel"`
	ErrorMessage     *string               `json:"errorMessage"`
	SuccessMessage   *string               `json:"successMessage"`
	FieldErrors      map[string]string     `json:"fieldErrors,omitempty"`
	Person           models.FormPerson     `json:"person"`
	Contact          models.FormContact    `json:"contact"`
	Address          models.FormAddress    `json:"address"`
	Graduate         models.FormGraduate   `json:"graduate"`
	Forces           []models.Force        `json:"forces"`
	Ranks            []models.MilitaryRank `json:"ranks"`
}

// View renders the state
func (s *State) View() View {
	steps := make([]StepView, len(Steps))
	for i, step := range Steps {
		steps[i] = StepView{
			Step:   step,
			Index:  i,
			Active: i == s.CurrentStepIndex,
			Done:   i < s.CurrentStepIndex,
		}
	}

	nextLabel := LabelNext
	switch {
	case s.Saving:
		nextLabel = LabelSaving
	case s.DownloadingPDF:
		nextLabel = LabelProcess
	case s.IsLastStep():
		nextLabel = LabelFinish
	}

	forces := s.Catalogs.Forces
	if forces == nil {
		forces = []models.Force{}
	}

	return View{
		Steps:            steps,
		CurrentStepIndex: s.CurrentStepIndex,
		CurrentStep:      Steps[ClampStep(s.CurrentStepIndex)].ID,
		IsLastStep:       s.IsLastStep(),
		Saving:           s.Saving,
		DownloadingPDF:   s.DownloadingPDF,
		Completed:        s.Completed,
		CanGoBack:        s.CurrentStepIndex > 0 && !s.Saving,
		CanAdvance:       !s.Saving && !s.DownloadingPDF && !s.Completed,
		NextLabel:        nextLabel,
		ErrorMessage:     s.ErrorMessage,
		SuccessMessage:   s.SuccessMessage,
		FieldErrors:      s.FieldErrors,
		Person:           s.Person,
		Contact:          s.Contact,
		Address:          s.Address,
		Graduate:         s.Graduate,
		Forces:           forces,
		Ranks:            RanksForForce(s.Catalogs, s.Graduate.ForceID),
	}
}

// View renders the controller's current state
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.View()
}
