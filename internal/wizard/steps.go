// Package wizard drives the four-step request form: it holds the draft
// records between HTTP calls, saves them to the API on every transition and
// triggers the PDF on the last step.
package wizard

// Step is one page of the form
type Step struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Step ids
const (
	StepPersonal = "personal"
	StepContact  = "contact"
	StepAddress  = "address"
	StepGraduate = "graduate"
)

// Steps is the fixed order of the form
var Steps = []Step{
	{ID: StepPersonal, Label: "Datos personales"},
	{ID: StepContact, Label: "Datos de contacto"},
	{ID: StepAddress, Label: "Domicilio"},
	{ID: StepGraduate, Label: "Tipo de egresado"},
}

// LastStep is the index of the final step
func LastStep() int {
	return len(Steps) - 1
}

// ClampStep bounds index to [0, LastStep()]
func ClampStep(index int) int {
	if index < 0 {
		return 0
	}
	if index > LastStep() {
		return LastStep()
	}
	return index
}
