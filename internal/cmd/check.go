package cmd

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aveekpatra/Domain-AI/internal/output"
	"github.com/aveekpatra/Domain-AI/internal/registrar"
	"github.com/aveekpatra/Domain-AI/internal/suggest"
)

var (
	checkFormat string
	checkTLDs   []string
)

var checkCmd = &cobra.Command{
	Use:   "check <domain|name>...",
	Short: "Check domain availability and pricing",
	Long: `Look up availability and pricing through the configured registrar and
score each name for brandability.

Arguments containing a dot are checked as given. Bare names are expanded
with every --tlds entry.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(checkFormat)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newRegistrar(cfg.Registrar)
		if err != nil {
			return err
		}
		if client == nil {
			return errors.New(registrar.CredentialsHint(registrar.Variant(cfg.Registrar.Variant)))
		}
		return runCheck(cmd.Context(), cmd.OutOrStdout(), format, client, expandDomains(args, checkTLDs))
	},
}

// expandDomains lowercases and dedupes the targets, pairing bare names
// with each TLD.
func expandDomains(args, tlds []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(d string) {
		if d != "" && !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}

	for _, arg := range args {
		arg = strings.ToLower(strings.TrimSpace(arg))
		if strings.Contains(arg, ".") {
			add(arg)
			continue
		}
		for _, tld := range tlds {
			for _, part := range strings.Split(tld, ",") {
				if part = strings.Trim(strings.ToLower(strings.TrimSpace(part)), "."); part != "" && arg != "" {
					add(arg + "." + part)
				}
			}
		}
	}
	return out
}

func runCheck(ctx context.Context, w io.Writer, format output.Format, client registrar.Client, domains []string) error {
	if len(domains) == 0 {
		return errors.New("no domains to check")
	}

	found, err := client.CheckAvailability(ctx, domains)
	if err != nil {
		if registrar.IsAuthError(err) {
			return errors.New(registrar.AuthHint(client.Variant()))
		}
		return err
	}

	report := output.CheckReport{Variant: string(client.Variant())}
	for _, domain := range domains {
		name, tld := splitDomain(domain)
		row := output.CheckRow{Domain: domain, Brandability: suggest.Brandability(name, tld)}
		if a, ok := found[domain]; ok {
			row.Availability = &a
		}
		report.Results = append(report.Results, row)
	}
	return output.Render(w, format, report)
}

// splitDomain separates the first label from the rest, so "acme.co.uk"
// scores "acme" against ".co.uk".
func splitDomain(domain string) (name, tld string) {
	idx := strings.Index(domain, ".")
	if idx < 0 {
		return domain, ""
	}
	return domain[:idx], domain[idx:]
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkFormat, "output-format", string(output.FormatTable), "Output format: table|json|markdown")
	checkCmd.Flags().StringSliceVar(&checkTLDs, "tlds", []string{"com"}, "TLDs for bare names")
}
