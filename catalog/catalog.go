// Package catalog maps the internal codes used by the project brief form to
// the labels shown to people.
package catalog

import "strings"

// Option is one selectable code with its display label.
type Option struct {
	Code  string
	Label string
}

var services = []Option{
	{Code: "web", Label: "Web Development"},
	{Code: "saas", Label: "SaaS Development"},
	{Code: "seo", Label: "SEO Services"},
	{Code: "marketing", Label: "Digital Marketing"},
	{Code: "ecommerce", Label: "E-commerce Solutions"},
	{Code: "branding", Label: "Branding & Design"},
}

var budgets = []Option{
	{Code: "under-5k", Label: "Under $5,000"},
	{Code: "5k-10k", Label: "$5,000 - $10,000"},
	{Code: "10k-25k", Label: "$10,000 - $25,000"},
	{Code: "25k-50k", Label: "$25,000 - $50,000"},
	{Code: "50k-plus", Label: "$50,000+"},
	{Code: "not-sure", Label: "Not sure yet"},
}

var hosting = []Option{
	{Code: "managed", Label: "Managed hosting by our team"},
	{Code: "self", Label: "Self-hosted / existing provider"},
	{Code: "cloud", Label: "Cloud platform (AWS, GCP, Azure)"},
	{Code: "not-sure", Label: "Not sure, need advice"},
}

// Services returns the service options in display order.
func Services() []Option { return clone(services) }

// Budgets returns the budget buckets in display order.
func Budgets() []Option { return clone(budgets) }

// HostingOptions returns the hosting preferences in display order.
func HostingOptions() []Option { return clone(hosting) }

// ServiceLabel returns the label for a service code, or the code itself when
// it is not in the catalog.
func ServiceLabel(code string) string { return lookup(services, code) }

// BudgetLabel returns the label for a budget code, or the code itself.
func BudgetLabel(code string) string { return lookup(budgets, code) }

// HostingLabel returns the label for a hosting code, or the code itself.
func HostingLabel(code string) string { return lookup(hosting, code) }

// ServiceLabels maps every code to its label, keeping order.
func ServiceLabels(codes []string) []string {
	labels := make([]string, 0, len(codes))
	for _, code := range codes {
		labels = append(labels, ServiceLabel(code))
	}
	return labels
}

// JoinServiceLabels renders codes as a comma separated label list.
func JoinServiceLabels(codes []string) string {
	return strings.Join(ServiceLabels(codes), ", ")
}

// IsService reports whether code is a known service code.
func IsService(code string) bool { return known(services, code) }

// IsBudget reports whether code is a known budget bucket.
func IsBudget(code string) bool { return known(budgets, code) }

func lookup(options []Option, code string) string {
	for _, o := range options {
		if o.Code == code {
			return o.Label
		}
	}
	return code
}

func known(options []Option, code string) bool {
	for _, o := range options {
		if o.Code == code {
			return true
		}
	}
	return false
}

func clone(options []Option) []Option {
	out := make([]Option, len(options))
	copy(out, options)
	return out
}
