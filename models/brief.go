package models

// ProjectBriefSubmission is the payload collected by the intake wizard and
// posted to /api/project-brief.
// Required fields carry validate tags; the email shape is checked separately.
type ProjectBriefSubmission struct {
	Name                 string   `json:"name" validate:"required"`
	Email                string   `json:"email" validate:"required"`
	Company              string   `json:"company" validate:"required"`
	Phone                string   `json:"phone,omitempty"`
	Services             []string `json:"services" validate:"min=1"`
	ProjectGoals         string   `json:"projectGoals" validate:"required"`
	TargetAudience       string   `json:"targetAudience,omitempty"`
	LaunchDate           string   `json:"launchDate" validate:"required"`
	BudgetRange          string   `json:"budgetRange" validate:"required"`
	ExistingWebsite      string   `json:"existingWebsite,omitempty"`
	HostingPreference    string   `json:"hostingPreference,omitempty"`
	RequiredIntegrations string   `json:"requiredIntegrations,omitempty"`
}

// HasService reports whether code is already selected.
func (s *ProjectBriefSubmission) HasService(code string) bool {
	for _, svc := range s.Services {
		if svc == code {
			return true
		}
	}
	return false
}

// BriefData carries the opaque identifier of an accepted submission.
type BriefData struct {
	ID string `json:"id"`
}

// BriefResponse is the envelope returned by the project brief endpoint.
// Success responses carry Message and Data; failures carry Error.
type BriefResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Data    *BriefData `json:"data,omitempty"`
	Error   string     `json:"error,omitempty"`
}
