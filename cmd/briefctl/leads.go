package main

import (
	"agencysite/catalog"
	"agencysite/models"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newLeadsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Browse archived leads",
	}
	cmd.AddCommand(newLeadsListCmd(v))
	return cmd
}

func newLeadsListCmd(v *viper.Viper) *cobra.Command {
	var params models.LeadQueryParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leads, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			token := v.GetString(keyToken)
			if token == "" {
				return fmt.Errorf("an admin token is required (--token or BRIEFCTL_TOKEN)")
			}

			client := resty.New().
				SetBaseURL(strings.TrimRight(v.GetString(keyServer), "/")).
				SetTimeout(v.GetDuration(keyTimeout)).
				SetAuthToken(token)
			defer client.GetClient().CloseIdleConnections()

			var page models.LeadsResponse
			var failed struct {
				Error string `json:"error"`
			}
			resp, err := client.R().
				SetContext(cmd.Context()).
				SetQueryParams(leadQuery(params)).
				SetResult(&page).
				SetError(&failed).
				Get("/api/leads")
			if err != nil {
				return fmt.Errorf("failed to reach server: %w", err)
			}
			if resp.IsError() {
				if failed.Error != "" {
					return fmt.Errorf("server returned %d: %s", resp.StatusCode(), failed.Error)
				}
				return fmt.Errorf("server returned %d", resp.StatusCode())
			}

			if v.GetString(keyOutput) == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(page)
			}
			return renderLeads(cmd.OutOrStdout(), page)
		},
	}

	f := cmd.Flags()
	f.StringVar(&params.Service, "service", "", "only leads that asked for this service code")
	f.StringVar(&params.Budget, "budget", "", "only leads with this budget code")
	f.StringVar(&params.Since, "since", "", "received at or after (RFC3339)")
	f.StringVar(&params.Until, "until", "", "received at or before (RFC3339)")
	f.StringVarP(&params.Search, "query", "q", "", "full-text search over company and goals")
	f.IntVar(&params.Limit, "limit", 20, "page size")
	f.IntVar(&params.Offset, "offset", 0, "page offset")
	return cmd
}

func leadQuery(p models.LeadQueryParams) map[string]string {
	q := map[string]string{
		"limit":  strconv.Itoa(p.Limit),
		"offset": strconv.Itoa(p.Offset),
	}
	for key, value := range map[string]string{
		"service": p.Service,
		"budget":  p.Budget,
		"since":   p.Since,
		"until":   p.Until,
		"q":       p.Search,
	} {
		if value != "" {
			q[key] = value
		}
	}
	return q
}

func renderLeads(w io.Writer, page models.LeadsResponse) error {
	table := tablewriter.NewWriter(w)
	table.Header("Received", "Company", "Contact", "Services", "Budget", "Confirmed")

	for _, lead := range page.Leads {
		confirmed := "no"
		if lead.ConfirmationSent {
			confirmed = "yes"
		}
		if err := table.Append(
			lead.ReceivedAt.Local().Format(time.DateTime),
			lead.Company,
			fmt.Sprintf("%s <%s>", lead.Name, lead.Email),
			catalog.JoinServiceLabels(lead.Services),
			catalog.BudgetLabel(lead.BudgetRange),
			confirmed,
		); err != nil {
			return err
		}
	}

	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "Showing %d of %d", len(page.Leads), page.Total)
	if page.HasMore {
		fmt.Fprintf(w, " (more with --offset %d)", page.Offset+len(page.Leads))
	}
	fmt.Fprintln(w)
	return nil
}
