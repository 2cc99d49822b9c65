package wizard

import "github.com/sgeneral-iua/portal-sg/internal/models"

// User-facing messages
const (
	MsgSaved         = "Datos guardados correctamente."
	MsgSaveFailed    = "No pudimos guardar los datos. Intentá nuevamente."
	MsgPDFReady      = "Guardamos tus datos y generamos el PDF."
	MsgPDFFailed     = "No pudimos generar el PDF. Intentá nuevamente."
	MsgLoadFailed    = "No pudimos cargar el formulario. Intentá nuevamente más tarde."
	MsgInvalidInput  = "Revisá los datos marcados antes de continuar."
	MsgDraftRejected = "No pudimos aplicar los cambios. Revisá los datos seleccionados."
)

// State is the serializable snapshot of a form session. Person, Contact,
// Address and Graduate hold what the user typed; they are only normalized
// when a payload is built.
type State struct {
	UserID           int64               `json:"userId"`
	CurrentStepIndex int                 `json:"currentStepIndex"`
	Saving           bool                `json:"saving"`
	DownloadingPDF   bool                `json:"downloadingPdf"`
	Completed        bool                `json:"completed"`
	ErrorMessage     *string             `json:"errorMessage"`
	SuccessMessage   *string             `json:"successMessage"`
	FieldErrors      map[string]string   `json:"fieldErrors,omitempty"`
	Person           models.FormPerson   `json:"person"`
	Contact          models.FormContact  `json:"contact"`
	Address          models.FormAddress  `json:"address"`
	Graduate         models.FormGraduate `json:"graduate"`
	Catalogs         models.FormCatalogs `json:"catalogs"`
}

func defaultAddress() models.FormAddress {
	empty := ""
	return models.FormAddress{Street: &empty}
}

// NewState builds the initial snapshot from the API's form record. A nil
// record starts every section from its defaults.
func NewState(userID int64, data *models.FormData) *State {
	s := &State{UserID: userID}
	s.replace(data)
	return s
}

// replace swaps every record for the server's canonical version. Missing
// sections are reset to their defaults.
func (s *State) replace(data *models.FormData) {
	s.Person = models.FormPerson{}
	s.Contact = models.FormContact{}
	s.Address = defaultAddress()
	s.Graduate = models.FormGraduate{}
	s.Catalogs = models.FormCatalogs{}
	if data == nil {
		return
	}

	s.Person = data.Person
	if data.Contact != nil {
		s.Contact = *data.Contact
	}
	if data.Address != nil {
		s.Address = *data.Address
	}
	if data.Graduate != nil {
		s.Graduate = *data.Graduate
	}
	s.Catalogs = data.Catalogs
}

func (s *State) setError(msg string) {
	s.ErrorMessage = &msg
	s.SuccessMessage = nil
}

func (s *State) setSuccess(msg string) {
	s.SuccessMessage = &msg
	s.ErrorMessage = nil
}

func (s *State) clearMessages() {
	s.ErrorMessage = nil
	s.SuccessMessage = nil
	s.FieldErrors = nil
}

// IsLastStep reports whether the current step is the final one
func (s *State) IsLastStep() bool {
	return s.CurrentStepIndex == LastStep()
}

// clone returns a deep enough copy for views and rollbacks
func (s *State) clone() *State {
	c := *s
	if s.FieldErrors != nil {
		c.FieldErrors = make(map[string]string, len(s.FieldErrors))
		for k, v := range s.FieldErrors {
			c.FieldErrors[k] = v
		}
	}
	return &c
}
