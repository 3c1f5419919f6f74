package app

import (
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/agentstation/bodsmap/internal/cmd/output"
	"github.com/agentstation/bodsmap/pkg/vocab"
)

// policySummary is one row of `policy list`.
type policySummary struct {
	Name        string `json:"name" yaml:"name"`
	Identifiers string `json:"identifier_fallback" yaml:"identifier_fallback"`
	Description string `json:"description" yaml:"description"`
}

// NewPolicyCommand creates the policy command.
func (a *App) NewPolicyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Show the active mapping policy",
		Long: `Print the mapping policy selected by --policy or --profile as a YAML
profile. The output can be edited and passed back with --profile.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			policy, err := vocab.Resolve(a.config.Policy, a.config.Profile)
			if err != nil {
				return err
			}
			data, err := policy.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the built-in mapping policies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := output.ParseFormat(a.config.Format)
			if err != nil {
				return err
			}
			summaries, err := policySummaries()
			if err != nil {
				return err
			}

			var data any = summaries
			if output.DetectFormat(string(format)) == output.FormatTable {
				data = policyTable(summaries)
			}
			return output.NewFormatter(output.DetectFormat(string(format))).Format(cmd.OutOrStdout(), data)
		},
	})

	return cmd
}

func policySummaries() ([]policySummary, error) {
	var summaries []policySummary
	for _, name := range vocab.Names() {
		p, err := vocab.Lookup(name)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, policySummary{
			Name:        p.Name,
			Identifiers: string(p.IdentifierFallback),
			Description: p.Description,
		})
	}
	return summaries, nil
}

func policyTable(summaries []policySummary) output.Data {
	data := output.Data{
		Headers:         []string{"Name", "Identifier Fallback", "Description"},
		ColumnAlignment: []tw.Align{tw.AlignLeft, tw.AlignLeft, tw.AlignLeft},
	}
	for _, s := range summaries {
		data.Rows = append(data.Rows, []string{s.Name, s.Identifiers, s.Description})
	}
	return data
}
