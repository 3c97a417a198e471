package models

import (
	"time"

	"github.com/google/uuid"
)

// Lead is an archived project brief. Rows are written only after the
// internal notification went out, so every lead was seen by the team.
type Lead struct {
	ID                    uuid.UUID `json:"id" db:"id"`
	Name                  string    `json:"name" db:"name"`
	Email                 string    `json:"email" db:"email"`
	Company               string    `json:"company" db:"company"`
	Phone                 string    `json:"phone,omitempty" db:"phone"`
	Services              []string  `json:"services" db:"services"`
	ProjectGoals          string    `json:"project_goals" db:"project_goals"`
	TargetAudience        string    `json:"target_audience,omitempty" db:"target_audience"`
	LaunchDate            string    `json:"launch_date" db:"launch_date"`
	BudgetRange           string    `json:"budget_range" db:"budget_range"`
	ExistingWebsite       string    `json:"existing_website,omitempty" db:"existing_website"`
	HostingPreference     string    `json:"hosting_preference,omitempty" db:"hosting_preference"`
	RequiredIntegrations  string    `json:"required_integrations,omitempty" db:"required_integrations"`
	NotificationMessageID string    `json:"notification_message_id" db:"notification_message_id"`
	ConfirmationMessageID string    `json:"confirmation_message_id,omitempty" db:"confirmation_message_id"`
	ConfirmationSent      bool      `json:"confirmation_sent" db:"confirmation_sent"`
	ReceivedAt            time.Time `json:"received_at" db:"received_at"`
	Rank                  *float64  `json:"rank,omitempty"` // Only populated for search results
}

// NewLead copies a normalized submission into an archive row.
func NewLead(id uuid.UUID, sub ProjectBriefSubmission, receivedAt time.Time) Lead {
	services := make([]string, len(sub.Services))
	copy(services, sub.Services)

	return Lead{
		ID:                   id,
		Name:                 sub.Name,
		Email:                sub.Email,
		Company:              sub.Company,
		Phone:                sub.Phone,
		Services:             services,
		ProjectGoals:         sub.ProjectGoals,
		TargetAudience:       sub.TargetAudience,
		LaunchDate:           sub.LaunchDate,
		BudgetRange:          sub.BudgetRange,
		ExistingWebsite:      sub.ExistingWebsite,
		HostingPreference:    sub.HostingPreference,
		RequiredIntegrations: sub.RequiredIntegrations,
		ReceivedAt:           receivedAt,
	}
}

// LeadQueryParams are the filters accepted by the lead listing endpoint.
type LeadQueryParams struct {
	Service string `form:"service"`
	Budget  string `form:"budget"`
	Since   string `form:"since"`
	Until   string `form:"until"`
	Search  string `form:"q"`
	Limit   int    `form:"limit"`
	Offset  int    `form:"offset"`
}

type LeadsResponse struct {
	Leads   []Lead `json:"leads"`
	Total   int64  `json:"total"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
	HasMore bool   `json:"has_more"`
}
