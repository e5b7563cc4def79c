package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aveekpatra/Domain-AI/internal/config"
	"github.com/aveekpatra/Domain-AI/internal/output"
	"github.com/aveekpatra/Domain-AI/internal/ratelimit"
	"github.com/aveekpatra/Domain-AI/internal/store"
)

var (
	limitsFormat string
	limitsAll    bool
	limitsKey    string
	limitsPrefix string
	limitsYes    bool
	limitsDryRun bool
)

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Inspect AI-tier rate limits",
}

var limitsOperationsCmd = &cobra.Command{
	Use:   "operations",
	Short: "Show the effective per-operation limits",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(limitsFormat)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return output.Render(cmd.OutOrStdout(), format, output.OperationReport{
			Operations: ratelimit.MergeOperations(cfg.RateLimit.Operations),
		})
	},
}

var limitsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted buckets (libsql store only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(limitsFormat)
		if err != nil {
			return err
		}
		query := limitsQuery()
		if !query.All && query.Key == "" && query.Prefix == "" {
			query.All = true
		}

		buckets, closeStore, err := openPersistentBuckets(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore() // nolint:errcheck // best-effort cleanup

		entries, err := buckets.List(cmd.Context(), query)
		if err != nil {
			return err
		}
		return output.Render(cmd.OutOrStdout(), format, output.BucketReport{Entries: entries})
	},
}

var limitsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete persisted buckets (libsql store only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(limitsFormat)
		if err != nil {
			return err
		}
		if format == output.FormatMarkdown {
			return fmt.Errorf("unsupported output format: %s", format)
		}

		query := limitsQuery()
		if err := query.Validate(); err != nil {
			return err
		}
		if query.All && !limitsYes && !limitsDryRun {
			return errors.New("--all requires --yes (or use --dry-run)")
		}

		buckets, closeStore, err := openPersistentBuckets(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore() // nolint:errcheck // best-effort cleanup

		return resetBuckets(cmd.Context(), cmd.OutOrStdout(), format, buckets, query, limitsDryRun)
	},
}

func limitsQuery() store.BucketQuery {
	return store.BucketQuery{
		All:    limitsAll,
		Key:    strings.TrimSpace(limitsKey),
		Prefix: strings.TrimSpace(limitsPrefix),
	}
}

// bucketAdmin is the part of store.BucketStore the reset command needs.
type bucketAdmin interface {
	List(ctx context.Context, q store.BucketQuery) ([]store.BucketEntry, error)
	Reset(ctx context.Context, q store.BucketQuery) (int64, error)
}

func resetBuckets(ctx context.Context, w io.Writer, format output.Format, buckets bucketAdmin, q store.BucketQuery, dryRun bool) error {
	matched, err := buckets.List(ctx, q)
	if err != nil {
		return err
	}

	var deleted int64
	if !dryRun {
		if deleted, err = buckets.Reset(ctx, q); err != nil {
			return err
		}
	}

	if format == output.FormatJSON {
		payload, err := json.MarshalIndent(map[string]any{
			"matched": len(matched),
			"deleted": deleted,
			"dry_run": dryRun,
		}, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(payload))
		return err
	}

	if dryRun {
		_, err = fmt.Fprintf(w, "Would delete %d bucket(s)\n", len(matched))
		return err
	}
	_, err = fmt.Fprintf(w, "Deleted %d/%d bucket(s)\n", deleted, len(matched))
	return err
}

func openPersistentBuckets(ctx context.Context) (*store.BucketStore, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.RateLimit.Store != config.StoreLibsql {
		return nil, nil, fmt.Errorf("ratelimit.store is %q; buckets are only persisted with %q", cfg.RateLimit.Store, config.StoreLibsql)
	}

	backend, err := openBucketStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return backend.Persistent, backend.Close, nil
}

func init() {
	limitsCmd.PersistentFlags().StringVar(&limitsFormat, "output-format", string(output.FormatTable), "Output format: table|json|markdown")

	for _, c := range []*cobra.Command{limitsListCmd, limitsResetCmd} {
		c.Flags().BoolVar(&limitsAll, "all", false, "Select all buckets")
		c.Flags().StringVar(&limitsKey, "key", "", "Select one bucket key (exact match, e.g. ai:203.0.113.7:domains-generate)")
		c.Flags().StringVar(&limitsPrefix, "prefix", "", "Select bucket keys with matching prefix")
	}
	limitsResetCmd.Flags().BoolVar(&limitsYes, "yes", false, "Confirm destructive reset")
	limitsResetCmd.Flags().BoolVar(&limitsDryRun, "dry-run", false, "Show what would be deleted")

	limitsCmd.AddCommand(limitsOperationsCmd, limitsListCmd, limitsResetCmd)
	rootCmd.AddCommand(limitsCmd)
}
