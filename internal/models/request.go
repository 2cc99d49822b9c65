package models

// AvailableTitle is a title the graduate can request, already filtered by the
// API to those pending a request
type AvailableTitle struct {
	IDTitle             int64   `json:"idTitle"`
	TitleName           *string `json:"titleName"`
	PlanName            *string `json:"planName"`
	AcademicProgramName *string `json:"academicProgramName"`
	FacultyName         *string `json:"facultyName"`
	StatusName          *string `json:"statusName"`
	RequestTypeID       *int64  `json:"requestTypeId"`
	RequestTypeName     *string `json:"requestTypeName"`
}

// CreateRequestPayload is the body of POST /api/requests
type CreateRequestPayload struct {
	IDUser        int64 `json:"idUser"`
	IDTitle       int64 `json:"idTitle"`
	IDRequestType int64 `json:"idRequestType"`
}

// RequestCreationResponse is returned after generating a request
type RequestCreationResponse struct {
	IDRequest     int64   `json:"idRequest"`
	GeneratedAt   *string `json:"generatedAt"`
	CurrentStatus *string `json:"currentStatus"`
	RequestType   struct {
		IDRequestType   *int64  `json:"idRequestType"`
		RequestTypeName *string `json:"requestTypeName"`
	} `json:"requestType"`
	Title struct {
		IDTitle   int64   `json:"idTitle"`
		TitleName *string `json:"titleName"`
	} `json:"title"`
	Requirements []struct {
		RequirementID int64 `json:"requirementId"`
		IsRequired    bool  `json:"isRequired"`
	} `json:"requirements"`
}
