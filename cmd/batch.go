package main

import (
	"bufio"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/nap-audit-cli/internal/audit"
	"github.com/sells-group/nap-audit-cli/internal/mailer"
	"github.com/sells-group/nap-audit-cli/internal/model"
)

var (
	batchInput  string
	batchOutput string
	batchEmail  []string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Audit a list of businesses and write a report",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("batch"); err != nil {
			return err
		}

		queries, err := readBusinessList(batchInput)
		if err != nil {
			return err
		}
		if len(queries) == 0 {
			return eris.Errorf("batch: no businesses in %s", batchInput)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.CreateRun(ctx, queries)
		if err != nil {
			return err
		}
		if err := st.UpdateRunStatus(ctx, run.ID, model.RunStatusAuditing); err != nil {
			return err
		}

		zap.L().Info("batch started",
			zap.String("run_id", run.ID),
			zap.Int("businesses", len(queries)),
			zap.Int("concurrency", cfg.Batch.MaxConcurrent),
		)

		auditor := buildAuditor(st)
		results, err := auditor.Run(ctx, queries, cfg.Batch.MaxConcurrent)
		if err != nil {
			_ = st.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed)
			return eris.Wrap(err, "batch run")
		}

		if err := st.CompleteRun(ctx, run.ID, results); err != nil {
			return err
		}

		if err := audit.ExportFile(batchOutput, results); err != nil {
			return err
		}

		counts := map[model.AuditStatus]int{}
		for _, r := range results {
			counts[r.Status]++
		}
		zap.L().Info("batch complete",
			zap.String("run_id", run.ID),
			zap.String("report", batchOutput),
			zap.Int("all_good", counts[model.StatusAllGood]),
			zap.Int("needs_update", counts[model.StatusNeedsUpdate]),
			zap.Int("no_match", counts[model.StatusNoMatch]),
			zap.Int("errors", counts[model.StatusError]),
		)

		if len(batchEmail) > 0 {
			m := mailer.New(mailer.Config{
				Host:     cfg.SMTP.Host,
				Port:     cfg.SMTP.Port,
				Username: cfg.SMTP.Username,
				Password: cfg.SMTP.Password,
				From:     cfg.SMTP.From,
			})
			if err := m.SendReport(batchEmail, batchOutput, results); err != nil {
				return err
			}
			zap.L().Info("report emailed", zap.Strings("to", batchEmail))
		}

		return nil
	},
}

// readBusinessList reads one business name per line, skipping blanks and
// comment lines.
func readBusinessList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	var queries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	return queries, eris.Wrapf(scanner.Err(), "batch: read %s", path)
}

func init() {
	batchCmd.Flags().StringVar(&batchInput, "input", "", "file with one business name per line (required)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "nap-audit-report.xlsx", "report file (.xlsx or .csv)")
	batchCmd.Flags().StringSliceVar(&batchEmail, "email", nil, "email the report to these recipients")
	_ = batchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(batchCmd)
}
