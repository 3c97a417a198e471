// Package tui is the terminal front end for the intake wizard.
package tui

import (
	"agencysite/catalog"
	"agencysite/wizard"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type itemKind int

const (
	kindInput itemKind = iota
	kindChecklist
	kindPicker
)

// item is one focusable control on a step.
type item struct {
	kind    itemKind
	label   string
	field   wizard.Field
	input   textinput.Model
	options []catalog.Option
	cursor  int
}

type submitDoneMsg struct {
	err error
}

type model struct {
	theme Theme
	wiz   *wizard.Wizard
	ctx   context.Context
	steps map[wizard.Step][]*item
	focus int
	width int
	// blocked is set when Next was refused, to explain why.
	blocked bool
}

// Run starts the wizard full screen and returns the final state.
func Run(ctx context.Context, wiz *wizard.Wizard) (wizard.State, error) {
	p := tea.NewProgram(newModel(ctx, wiz), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return wiz.Snapshot(), err
}

func newModel(ctx context.Context, wiz *wizard.Wizard) *model {
	m := &model{
		theme: DefaultTheme(),
		wiz:   wiz,
		ctx:   ctx,
		steps: map[wizard.Step][]*item{
			wizard.StepContact: {
				newInput("Full name", wizard.FieldName, "Jane Doe"),
				newInput("Email", wizard.FieldEmail, "jane@company.com"),
				newInput("Company", wizard.FieldCompany, "Acme Co"),
				newInput("Phone (optional)", wizard.FieldPhone, "+1 555 0100"),
			},
			wizard.StepProject: {
				{kind: kindChecklist, label: "Services", options: catalog.Services()},
				newInput("Project goals", wizard.FieldProjectGoals, "What should this project achieve?"),
				newInput("Target audience", wizard.FieldTargetAudience, "Who is it for?"),
			},
			wizard.StepTimeline: {
				newInput("Launch date", wizard.FieldLaunchDate, "e.g. 2025-09-01 or Q3"),
				{kind: kindPicker, label: "Budget", field: wizard.FieldBudgetRange, options: catalog.Budgets()},
			},
			wizard.StepTechnical: {
				newInput("Existing website", wizard.FieldExistingWebsite, "https://"),
				{kind: kindPicker, label: "Hosting", field: wizard.FieldHostingPreference, options: catalog.HostingOptions()},
				newInput("Integrations", wizard.FieldRequiredIntegrations, "CRM, payments, analytics..."),
			},
		},
	}

	// Prefill from data loaded before the TUI started.
	for _, items := range m.steps {
		for _, it := range items {
			if it.kind == kindInput {
				if v, err := wiz.Field(it.field); err == nil {
					it.input.SetValue(v)
				}
			}
		}
	}
	m.focusCurrent()
	return m
}

func newInput(label string, field wizard.Field, placeholder string) *item {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.CharLimit = 2000
	return &item{kind: kindInput, label: label, field: field, input: ti}
}

func (m *model) Init() tea.Cmd { return textinput.Blink }

func (m *model) items() []*item {
	return m.steps[m.wiz.Snapshot().Step]
}

func (m *model) focusCurrent() tea.Cmd {
	var cmd tea.Cmd
	for i, it := range m.items() {
		if it.kind != kindInput {
			continue
		}
		if i == m.focus {
			cmd = it.input.Focus()
		} else {
			it.input.Blur()
		}
	}
	return cmd
}

func (m *model) moveFocus(delta int) tea.Cmd {
	n := len(m.items())
	if n == 0 {
		return nil
	}
	m.focus = (m.focus + delta + n) % n
	return m.focusCurrent()
}

func (m *model) changeStep(advance bool) tea.Cmd {
	if advance {
		if !m.wiz.Next() {
			m.blocked = true
			return nil
		}
		m.blocked = false
	} else {
		m.wiz.Prev()
	}
	m.focus = 0
	return m.focusCurrent()
}

func (m *model) submit() tea.Cmd {
	s := m.wiz.Snapshot()
	if s.Submitting || s.Status == wizard.StatusSuccess {
		return nil
	}
	wiz, ctx := m.wiz, m.ctx
	return func() tea.Msg {
		return submitDoneMsg{err: wiz.Submit(ctx)}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case submitDoneMsg:
		return m, nil

	case tea.KeyMsg:
		s := m.wiz.Snapshot()
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if s.Status == wizard.StatusSuccess {
				return m, tea.Quit
			}
			return m, m.changeStep(false)
		case "ctrl+n", "pgdown":
			return m, m.changeStep(true)
		case "ctrl+p", "pgup":
			return m, m.changeStep(false)
		case "tab", "down":
			if m.onList() && msg.String() == "down" {
				m.current().cursor = min(m.current().cursor+1, len(m.current().options)-1)
				return m, nil
			}
			return m, m.moveFocus(1)
		case "shift+tab", "up":
			if m.onList() && msg.String() == "up" {
				m.current().cursor = max(m.current().cursor-1, 0)
				return m, nil
			}
			return m, m.moveFocus(-1)
		case "enter":
			if s.Step == wizard.LastStep {
				if s.Status == wizard.StatusSuccess {
					return m, tea.Quit
				}
				return m, m.submit()
			}
			if m.focus == len(m.items())-1 {
				return m, m.changeStep(true)
			}
			return m, m.moveFocus(1)
		case " ":
			if m.onList() {
				m.choose()
				return m, nil
			}
		}

		if it := m.current(); it != nil && it.kind == kindInput {
			var cmd tea.Cmd
			it.input, cmd = it.input.Update(msg)
			_ = m.wiz.SetField(it.field, it.input.Value())
			return m, cmd
		}
	}

	return m, nil
}

func (m *model) current() *item {
	items := m.items()
	if m.focus < 0 || m.focus >= len(items) {
		return nil
	}
	return items[m.focus]
}

func (m *model) onList() bool {
	it := m.current()
	return it != nil && it.kind != kindInput
}

func (m *model) choose() {
	it := m.current()
	opt := it.options[it.cursor]
	switch it.kind {
	case kindChecklist:
		m.wiz.ToggleService(opt.Code)
	case kindPicker:
		_ = m.wiz.SetField(it.field, opt.Code)
	}
}

func (m *model) View() string {
	s := m.wiz.Snapshot()

	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Project Brief"))
	b.WriteString("  ")
	b.WriteString(m.theme.Subtitle.Render(fmt.Sprintf("Step %d of %d · %s", s.Step, wizard.LastStep, s.Step)))
	b.WriteString("\n\n")

	if s.Step == wizard.LastStep {
		b.WriteString(m.review(s))
	} else {
		for i, it := range m.items() {
			b.WriteString(m.renderItem(it, i == m.focus, s))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.status(s))
	b.WriteString(m.theme.Help.Render(m.help(s)))

	card := m.theme.Card
	if m.width > 4 {
		card = card.Width(m.width - 4)
	}
	return card.Render(b.String())
}

func (m *model) renderItem(it *item, focused bool, s wizard.State) string {
	label := m.theme.Label.Render(it.label)
	if focused {
		label = m.theme.Focused.Render(m.theme.Label.Render(it.label))
	}

	switch it.kind {
	case kindInput:
		return label + it.input.View()
	default:
		lines := []string{label}
		for i, opt := range it.options {
			pointer := "  "
			if focused && i == it.cursor {
				pointer = m.theme.Focused.Render("› ")
			}
			lines = append(lines, fmt.Sprintf("%s%s %s", pointer, m.mark(it, opt, s), opt.Label))
		}
		return strings.Join(lines, "\n")
	}
}

func (m *model) mark(it *item, opt catalog.Option, s wizard.State) string {
	if it.kind == kindChecklist {
		if s.Data.HasService(opt.Code) {
			return "[x]"
		}
		return "[ ]"
	}
	v, _ := m.wiz.Field(it.field)
	if v == opt.Code {
		return "(•)"
	}
	return "( )"
}

func (m *model) review(s wizard.State) string {
	d := s.Data
	rows := [][2]string{
		{"Name", d.Name},
		{"Email", d.Email},
		{"Company", d.Company},
		{"Phone", d.Phone},
		{"Project goals", d.ProjectGoals},
		{"Target audience", d.TargetAudience},
		{"Launch date", d.LaunchDate},
		{"Budget", catalog.BudgetLabel(d.BudgetRange)},
		{"Existing website", d.ExistingWebsite},
		{"Hosting", catalog.HostingLabel(d.HostingPreference)},
		{"Integrations", d.RequiredIntegrations},
	}

	var b strings.Builder
	badges := make([]string, 0, len(d.Services))
	for _, label := range catalog.ServiceLabels(d.Services) {
		badges = append(badges, m.theme.Badge.Render(label))
	}
	b.WriteString(m.theme.Label.Render("Services"))
	b.WriteString(strings.Join(badges, " "))
	b.WriteString("\n")

	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		b.WriteString(m.theme.Label.Render(row[0]))
		b.WriteString(row[1])
		b.WriteString("\n")
	}
	return b.String()
}

func (m *model) status(s wizard.State) string {
	switch {
	case s.Submitting:
		return m.theme.Subtitle.Render("Submitting...") + "\n"
	case s.Status == wizard.StatusSuccess:
		return m.theme.Success.Render(s.Message) + "\n"
	case s.Status == wizard.StatusError:
		return m.theme.Error.Render(s.Message) + "\n"
	case s.Step != wizard.LastStep && !m.wiz.ValidateStep(s.Step) && m.blocked:
		return m.theme.Error.Render("Fill in the required fields to continue.") + "\n"
	}
	return ""
}

func (m *model) help(s wizard.State) string {
	switch {
	case s.Status == wizard.StatusSuccess:
		return "enter/esc: quit"
	case s.Step == wizard.LastStep:
		return "enter: submit · ctrl+p/esc: back · ctrl+c: quit"
	default:
		return "tab: next field · space: select · ctrl+n: next step · ctrl+p/esc: back · ctrl+c: quit"
	}
}
