package models

// MenuOption is an entry of the dashboard action menu
type MenuOption struct {
	ID          int64   `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// RequestSummary is one request row on the dashboard
type RequestSummary struct {
	IDRequest             int64   `json:"idRequest"`
	RequestTypeName       *string `json:"requestTypeName"`
	GeneratedAt           *string `json:"generatedAt"`
	StatusName            *string `json:"statusName"`
	StatusDescription     *string `json:"statusDescription"`
	NextAction            string  `json:"nextAction"`
	RequestTypeID         *int64  `json:"requestTypeId"`
	AcademicProgramName   *string `json:"academicProgramName"`
	FacultyName           *string `json:"facultyName"`
	PlanName              *string `json:"planName"`
	TotalRequirements     *int64  `json:"totalRequirements,omitempty"`
	CompletedRequirements *int64  `json:"completedRequirements,omitempty"`
}

// DashboardData is the body of GET /api/dashboard
type DashboardData struct {
	MenuOptions []MenuOption     `json:"menuOptions"`
	Requests    []RequestSummary `json:"requests"`
}
