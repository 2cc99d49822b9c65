package models

// Requirement instance status ids as assigned by the Secretaría API. Any
// other id is treated as pending.
const (
	RequirementStatusCompleted int64 = 2
	RequirementStatusAccepted  int64 = 3
	RequirementStatusRejected  int64 = 4
)

// ResponsibilityAdministrative marks requirements fulfilled by the
// Secretaría itself rather than by the graduate.
const ResponsibilityAdministrative = "ADMINISTRATIVE"

// RequirementInstance is one document obligation attached to a request
type RequirementInstance struct {
	IDRequestRequirementInstance int64   `json:"idRequestRequirementInstance"`
	RequestID                    *int64  `json:"requestId"`
	RequirementID                *int64  `json:"requirementId"`
	CompletedByUserID            *int64  `json:"completedByUserId"`
	CompletedAt                  *string `json:"completedAt"`
	VerifiedByUserID             *int64  `json:"verifiedByUserId"`
	VerifiedAt                   *string `json:"verifiedAt"`
	CurrentRequirementStatusID   *int64  `json:"currentRequirementStatusId"`
	ComplianceVersion            *int64  `json:"complianceVersion"`
	ReviewReason                 *string `json:"reviewReason"`
	RequirementFilePath          *string `json:"requirementFilePath"`
}

// Requirement describes what has to be presented
type Requirement struct {
	IDRequirement          int64   `json:"idRequirement"`
	RequirementName        *string `json:"requirementName"`
	RequirementDescription *string `json:"requirementDescription"`
}

// RequirementStatus is the display status of an instance
type RequirementStatus struct {
	IDRequirementInstanceStatus   int64   `json:"idRequirementInstanceStatus"`
	RequirementInstanceStatusName *string `json:"requirementInstanceStatusName"`
}

// RequirementItem is one row of GET /api/requests/:id/requirements
type RequirementItem struct {
	RequirementInstance RequirementInstance `json:"requirementInstance"`
	Requirement         *Requirement        `json:"requirement"`
	Status              *RequirementStatus  `json:"status"`
	Responsibility      *string             `json:"responsibility,omitempty"`
}

// InstanceID returns the requirement instance id
func (i RequirementItem) InstanceID() int64 {
	return i.RequirementInstance.IDRequestRequirementInstance
}

// StatusID returns the status id, preferring the status object and falling
// back to the instance's current status. Zero means unknown.
func (i RequirementItem) StatusID() int64 {
	if i.Status != nil {
		return i.Status.IDRequirementInstanceStatus
	}
	if i.RequirementInstance.CurrentRequirementStatusID != nil {
		return *i.RequirementInstance.CurrentRequirementStatusID
	}
	return 0
}

// IsAdministrative reports whether the Secretaría owns this requirement
func (i RequirementItem) IsAdministrative() bool {
	return i.Responsibility != nil && *i.Responsibility == ResponsibilityAdministrative
}

// HasFile reports whether a document has been uploaded
func (i RequirementItem) HasFile() bool {
	return i.RequirementInstance.RequirementFilePath != nil && *i.RequirementInstance.RequirementFilePath != ""
}

// IsAccepted reports whether the reviewer accepted the document
func (i RequirementItem) IsAccepted() bool {
	return i.StatusID() == RequirementStatusAccepted
}

// IsRejected reports whether the reviewer rejected the document
func (i RequirementItem) IsRejected() bool {
	return i.StatusID() == RequirementStatusRejected
}

// ReviewPayload is the body of the review endpoint
type ReviewPayload struct {
	NextStatusID   int64   `json:"nextStatusId"`
	ReviewReason   *string `json:"reviewReason"`
	ReviewerUserID int64   `json:"reviewerUserId"`
}

// UploadFile is a document to attach to a requirement instance
type UploadFile struct {
	FileName    string
	ContentType string
	Content     []byte
}

// FileBlob is a downloaded document
type FileBlob struct {
	FileName    string
	ContentType string
	Content     []byte
}
