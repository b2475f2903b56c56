package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runNoCache bool

var runCmd = &cobra.Command{
	Use:   "run <business name>",
	Short: "Audit a single business",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("audit"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if runNoCache {
			cfg.Scrape.CacheTTLHours = 0
		}

		auditor := buildAuditor(st)
		result := auditor.Audit(ctx, args[0])

		zap.L().Info("audit complete",
			zap.String("business", result.Query),
			zap.String("status", string(result.Status)),
			zap.Int("discrepancies", len(result.Discrepancies)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return eris.Wrap(err, "encode result")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runNoCache, "no-cache", false, "bypass the scrape cache")
	rootCmd.AddCommand(runCmd)
}
