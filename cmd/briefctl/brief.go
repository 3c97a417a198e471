package main

import (
	"agencysite/models"
	"agencysite/tui"
	"agencysite/wizard"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newNewCmd(v *viper.Viper) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Fill in a project brief interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			transport := newTransport(v)
			defer transport.Close()

			wiz := wizard.New(transport)
			if from != "" {
				brief, err := readBrief(cmd.InOrStdin(), from)
				if err != nil {
					return err
				}
				wiz.Load(brief)
			}

			state, err := tui.Run(cmd.Context(), wiz)
			if err != nil {
				return err
			}
			return printOutcome(cmd, state)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "prefill the wizard from a JSON brief")
	return cmd
}

func newSubmitCmd(v *viper.Viper) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a project brief from a JSON file",
		Example: `  briefctl submit --file brief.json
  BRIEFCTL_SERVER=https://studio.example.com briefctl submit -f brief.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			brief, err := readBrief(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			transport := newTransport(v)
			defer transport.Close()

			wiz := wizard.New(transport)
			wiz.Load(brief)
			if !wiz.Complete() {
				return errors.New("brief is incomplete: name, email, company, services, projectGoals, launchDate and budgetRange are required")
			}

			if err := wiz.Submit(cmd.Context()); err != nil {
				return err
			}
			return printOutcome(cmd, wiz.Snapshot())
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the brief JSON ('-' for stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readBrief(stdin io.Reader, path string) (models.ProjectBriefSubmission, error) {
	var brief models.ProjectBriefSubmission

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return brief, fmt.Errorf("failed to read brief: %w", err)
	}

	if err := json.Unmarshal(data, &brief); err != nil {
		return brief, fmt.Errorf("failed to parse brief: %w", err)
	}
	return brief, nil
}

func printOutcome(cmd *cobra.Command, s wizard.State) error {
	out := cmd.OutOrStdout()
	switch s.Status {
	case wizard.StatusSuccess:
		fmt.Fprintln(out, s.Message)
		fmt.Fprintf(out, "Reference: %s\n", s.ID)
		return nil
	case wizard.StatusError:
		return errors.New(s.Message)
	default:
		fmt.Fprintln(out, "Brief not submitted.")
		return nil
	}
}
