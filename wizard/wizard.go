// Package wizard holds the five-step intake flow that builds a project brief
// and hands it to a Transport.
package wizard

import (
	"agencysite/models"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

type Step int

const (
	StepContact Step = iota + 1
	StepProject
	StepTimeline
	StepTechnical
	StepReview
)

const (
	FirstStep = StepContact
	LastStep  = StepReview
)

var stepTitles = map[Step]string{
	StepContact:   "Contact",
	StepProject:   "Project",
	StepTimeline:  "Timeline & Budget",
	StepTechnical: "Technical Details",
	StepReview:    "Review",
}

func (s Step) String() string {
	if title, ok := stepTitles[s]; ok {
		return title
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

type Status string

const (
	StatusIdle    Status = "idle"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Field names match the JSON keys of models.ProjectBriefSubmission.
type Field string

const (
	FieldName                 Field = "name"
	FieldEmail                Field = "email"
	FieldCompany              Field = "company"
	FieldPhone                Field = "phone"
	FieldProjectGoals         Field = "projectGoals"
	FieldTargetAudience       Field = "targetAudience"
	FieldLaunchDate           Field = "launchDate"
	FieldBudgetRange          Field = "budgetRange"
	FieldExistingWebsite      Field = "existingWebsite"
	FieldHostingPreference    Field = "hostingPreference"
	FieldRequiredIntegrations Field = "requiredIntegrations"
)

var (
	ErrUnknownField     = errors.New("unknown field")
	ErrSubmitInFlight   = errors.New("submission already in progress")
	ErrAlreadySubmitted = errors.New("brief already submitted")
)

// State is a point-in-time copy of the wizard.
type State struct {
	Step       Step
	Data       models.ProjectBriefSubmission
	Submitting bool
	Status     Status
	Message    string
	ID         string
}

// Wizard is safe for concurrent use; the TUI submits from a command
// goroutine while the UI keeps reading snapshots.
type Wizard struct {
	mu        sync.Mutex
	transport Transport
	state     State
}

func New(transport Transport) *Wizard {
	return &Wizard{
		transport: transport,
		state: State{
			Step:   FirstStep,
			Status: StatusIdle,
			Data:   models.ProjectBriefSubmission{Services: []string{}},
		},
	}
}

// SetField sets one scalar field. It never validates.
func (w *Wizard) SetField(field Field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	target, ok := w.fieldPtr(field)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	*target = value
	return nil
}

// Field returns the current value of a scalar field.
func (w *Wizard) Field(field Field) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	target, ok := w.fieldPtr(field)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return *target, nil
}

func (w *Wizard) fieldPtr(field Field) (*string, bool) {
	d := &w.state.Data
	switch field {
	case FieldName:
		return &d.Name, true
	case FieldEmail:
		return &d.Email, true
	case FieldCompany:
		return &d.Company, true
	case FieldPhone:
		return &d.Phone, true
	case FieldProjectGoals:
		return &d.ProjectGoals, true
	case FieldTargetAudience:
		return &d.TargetAudience, true
	case FieldLaunchDate:
		return &d.LaunchDate, true
	case FieldBudgetRange:
		return &d.BudgetRange, true
	case FieldExistingWebsite:
		return &d.ExistingWebsite, true
	case FieldHostingPreference:
		return &d.HostingPreference, true
	case FieldRequiredIntegrations:
		return &d.RequiredIntegrations, true
	default:
		return nil, false
	}
}

// ToggleService adds code if absent and removes it otherwise.
func (w *Wizard) ToggleService(code string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	services := w.state.Data.Services
	for i, svc := range services {
		if svc == code {
			w.state.Data.Services = append(services[:i:i], services[i+1:]...)
			return
		}
	}
	w.state.Data.Services = append(services, code)
}

// ValidateStep reports whether step's required fields are filled in. The
// review step has nothing to advance to and is never valid.
func (w *Wizard) ValidateStep(step Step) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return validateStep(step, w.state.Data)
}

func validateStep(step Step, d models.ProjectBriefSubmission) bool {
	switch step {
	case StepContact:
		return present(d.Name) && present(d.Email) && present(d.Company)
	case StepProject:
		return len(d.Services) > 0 && present(d.ProjectGoals)
	case StepTimeline:
		return present(d.LaunchDate) && present(d.BudgetRange)
	case StepTechnical:
		return true
	default:
		return false
	}
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}

// Next advances one step when the current step is valid.
func (w *Wizard) Next() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !validateStep(w.state.Step, w.state.Data) {
		return false
	}
	w.state.Step++
	return true
}

func (w *Wizard) Prev() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.Step > FirstStep {
		w.state.Step--
	}
}

// Submit posts the collected brief once. Failures are recorded in the state
// and returned; the form stays editable so the user can retry.
func (w *Wizard) Submit(ctx context.Context) error {
	w.mu.Lock()
	switch {
	case w.state.Submitting:
		w.mu.Unlock()
		return ErrSubmitInFlight
	case w.state.Status == StatusSuccess:
		w.mu.Unlock()
		return ErrAlreadySubmitted
	}
	w.state.Submitting = true
	w.state.Message = ""
	brief := cloneBrief(w.state.Data)
	w.mu.Unlock()

	result, err := w.transport.Submit(ctx, brief)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.state.Submitting = false
	if err != nil {
		w.state.Status = StatusError
		w.state.Message = err.Error()
		return err
	}

	w.state.Status = StatusSuccess
	w.state.Message = result.Message
	w.state.ID = result.ID
	return nil
}

func (w *Wizard) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := w.state
	s.Data = cloneBrief(w.state.Data)
	return s
}

// Load replaces the collected data, e.g. from a JSON file, and rewinds to
// the first step.
func (w *Wizard) Load(brief models.ProjectBriefSubmission) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.state.Data = cloneBrief(brief)
	if w.state.Data.Services == nil {
		w.state.Data.Services = []string{}
	}
	w.state.Step = FirstStep
}

// Complete reports whether every data step validates.
func (w *Wizard) Complete() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	for step := FirstStep; step < LastStep; step++ {
		if !validateStep(step, w.state.Data) {
			return false
		}
	}
	return true
}

func cloneBrief(b models.ProjectBriefSubmission) models.ProjectBriefSubmission {
	out := b
	if b.Services != nil {
		out.Services = make([]string, len(b.Services))
		copy(out.Services, b.Services)
	}
	return out
}
