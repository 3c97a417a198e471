package email

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/aymerick/raymond"
)

//go:embed templates
var templateFS embed.FS

const (
	templateNotification = "notification"
	templateConfirmation = "confirmation"
	layoutBase           = "base"
)

// Rendered is the HTML body and plain-text alternative of one email.
type Rendered struct {
	HTML string
	Text string
}

// NotificationData feeds the internal new-brief notification.
type NotificationData struct {
	Name                 string
	Email                string
	Company              string
	Phone                string
	ServiceLabels        []string
	ProjectGoals         string
	TargetAudience       string
	LaunchDate           string
	BudgetLabel          string
	ExistingWebsite      string
	HostingLabel         string
	RequiredIntegrations string
	ReceivedAt           string
}

// ConfirmationData feeds the confirmation sent to the person who submitted.
type ConfirmationData struct {
	Name          string
	Company       string
	ServiceLabels []string
	BudgetLabel   string
	LaunchDate    string
	SchedulingURL string
}

// Renderer executes the embedded Handlebars templates. Templates are parsed
// once in NewRenderer; rendering performs no I/O.
type Renderer struct {
	html   map[string]*raymond.Template
	text   map[string]*raymond.Template
	layout *raymond.Template
}

// NewRenderer parses the embedded layout, partials and templates.
func NewRenderer() (*Renderer, error) {
	partials, err := readPartials()
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		html: make(map[string]*raymond.Template),
		text: make(map[string]*raymond.Template),
	}

	r.layout, err = parseTemplate(path.Join("templates", "layouts", layoutBase+".hbs"), partials)
	if err != nil {
		return nil, err
	}

	for _, name := range []string{templateNotification, templateConfirmation} {
		tmpl, err := parseTemplate(path.Join("templates", name+".hbs"), partials)
		if err != nil {
			return nil, err
		}
		r.html[name] = tmpl

		textTmpl, err := parseTemplate(path.Join("templates", name+".txt.hbs"), nil)
		if err != nil {
			return nil, err
		}
		r.text[name] = textTmpl
	}

	return r, nil
}

// RenderNotification renders the email the team receives for a new brief.
func (r *Renderer) RenderNotification(d NotificationData) (*Rendered, error) {
	ctx := map[string]interface{}{
		"title":                "New Project Brief",
		"previewText":          fmt.Sprintf("%s from %s sent a project brief", d.Name, d.Company),
		"name":                 d.Name,
		"email":                d.Email,
		"company":              d.Company,
		"phone":                d.Phone,
		"phoneHref":            telHref(d.Phone),
		"mailtoHref":           "mailto:" + d.Email,
		"services":             d.ServiceLabels,
		"serviceList":          strings.Join(d.ServiceLabels, ", "),
		"projectGoals":         d.ProjectGoals,
		"targetAudience":       d.TargetAudience,
		"launchDate":           d.LaunchDate,
		"budget":               d.BudgetLabel,
		"existingWebsite":      d.ExistingWebsite,
		"hosting":              d.HostingLabel,
		"requiredIntegrations": d.RequiredIntegrations,
		"hasTechnicalDetails":  d.ExistingWebsite != "" || d.HostingLabel != "" || d.RequiredIntegrations != "",
		"receivedAt":           d.ReceivedAt,
		"nextSteps": []string{
			"Review the brief and research the company",
			"Reply within 24 hours to schedule a discovery call",
			"Prepare initial questions about goals and constraints",
			"Draft a rough scope and timeline estimate",
		},
	}
	return r.render(templateNotification, ctx)
}

// RenderConfirmation renders the acknowledgement sent to the submitter.
func (r *Renderer) RenderConfirmation(d ConfirmationData) (*Rendered, error) {
	ctx := map[string]interface{}{
		"title":         "We received your project brief",
		"previewText":   "Thanks for reaching out. Here is what happens next.",
		"name":          d.Name,
		"firstName":     firstName(d.Name),
		"company":       d.Company,
		"services":      d.ServiceLabels,
		"serviceList":   strings.Join(d.ServiceLabels, ", "),
		"budget":        d.BudgetLabel,
		"launchDate":    d.LaunchDate,
		"schedulingUrl": d.SchedulingURL,
		"timeline": []map[string]string{
			{"when": "Within 24 hours", "what": "We review your brief and reply with any questions."},
			{"when": "Within 3 days", "what": "We meet on a discovery call to go through your goals."},
			{"when": "Within 1 week", "what": "You receive a proposal with scope, timeline and pricing."},
		},
	}
	return r.render(templateConfirmation, ctx)
}

func (r *Renderer) render(name string, ctx map[string]interface{}) (*Rendered, error) {
	tmpl, ok := r.html[name]
	if !ok {
		return nil, fmt.Errorf("template not found: %s", name)
	}

	content, err := tmpl.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to render template %s: %w", name, err)
	}

	layoutCtx := make(map[string]interface{}, len(ctx)+1)
	for k, v := range ctx {
		layoutCtx[k] = v
	}
	layoutCtx["content"] = raymond.SafeString(content)

	html, err := r.layout.Exec(layoutCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to render layout %s: %w", layoutBase, err)
	}

	text, err := r.text[name].Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to render text template %s: %w", name, err)
	}

	return &Rendered{HTML: html, Text: text}, nil
}

func readPartials() (map[string]string, error) {
	dir := path.Join("templates", "partials")
	entries, err := templateFS.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read partials: %w", err)
	}

	partials := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".hbs") {
			continue
		}
		content, err := templateFS.ReadFile(path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read partial %s: %w", entry.Name(), err)
		}
		partials[strings.TrimSuffix(entry.Name(), ".hbs")] = string(content)
	}
	return partials, nil
}

func parseTemplate(file string, partials map[string]string) (*raymond.Template, error) {
	content, err := templateFS.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("template not found: %s", file)
	}

	tmpl, err := raymond.Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", file, err)
	}
	if len(partials) > 0 {
		tmpl.RegisterPartials(partials)
	}
	return tmpl, nil
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return name
	}
	return fields[0]
}

// telHref keeps digits and a leading plus so the link dials on phones.
func telHref(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
