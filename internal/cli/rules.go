package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/doclint/internal/config"
	"github.com/mvp-joe/doclint/internal/rules"
)

var rulesJSON bool

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the available rules",
	Long: `List every rule with its kind and the severity it reports at after
lint.rules overrides from the configuration are applied. Disabled rules are
shown as "off".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := config.NewLoader(".")
		if cfgFile != "" {
			loader = config.NewFileLoader(cfgFile)
		}
		cfg, err := loader.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		configured, err := cfg.Registry()
		if err != nil {
			return err
		}
		return printRules(cmd.OutOrStdout(), configured, rulesJSON)
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.Flags().BoolVar(&rulesJSON, "json", false, "Output as JSON")
}

type ruleInfo struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// printRules lists the default rules in order, with severities taken from
// configured.
func printRules(w io.Writer, configured *rules.Registry, asJSON bool) error {
	var infos []ruleInfo
	for _, r := range rules.Default().Rules() {
		sev := rules.Off
		if c, ok := configured.Lookup(r.ID); ok {
			sev = c.Severity.String()
		}
		infos = append(infos, ruleInfo{
			ID:          r.ID,
			Kind:        r.Kind.String(),
			Severity:    sev,
			Description: r.Description,
		})
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	fmt.Fprintf(w, "%-22s %-9s %-8s %s\n", "RULE", "KIND", "SEVERITY", "DESCRIPTION")
	for _, info := range infos {
		fmt.Fprintf(w, "%-22s %-9s %-8s %s\n", info.ID, info.Kind, info.Severity, info.Description)
	}
	return nil
}
