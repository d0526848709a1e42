package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"assocreport/adapters/excel"
	"assocreport/adapters/stats/senses"
	"assocreport/app"
	"assocreport/domain/core"
	"assocreport/domain/dataset"
	"assocreport/internal"
	"assocreport/internal/config"
	"assocreport/internal/encoding"
	apperrors "assocreport/internal/errors"
	"assocreport/internal/profiling"
	"assocreport/internal/report"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "assocreport",
		Short:        "Chi-square association reports over categorical datasets",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newReportCmd(),
		newProfileCmd(),
		newEncodeCmd(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type reportFlags struct {
	data    string
	plan    string
	output  string
	format  string
	alpha   float64
	order   string
	yates   bool
	workers int
	row     string
	col     string
	title   string
}

func newReportCmd() *cobra.Command {
	var f reportFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run chi-square association reports",
		Long: `Run the chi-square test of independence with Cramer's V for every pair of the
analysis plan, or for a single pair given with --row and --col.

Output goes to stdout and is duplicated to OUTPUT_FILE (disable with --output -).

Example: assocreport report --data police_shootings.xlsx --plan plan.yaml
         assocreport report --data incidents.csv --row gender --col flee --format markdown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyReportFlags(cmd, cfg, &f)
			return runReport(cmd.Context(), cfg, f)
		},
	}
	bindReportFlags(cmd, &f)
	return cmd
}

func bindReportFlags(cmd *cobra.Command, f *reportFlags) {
	cmd.Flags().StringVar(&f.data, "data", "", "CSV or XLSX data file (default DATA_FILE)")
	cmd.Flags().StringVar(&f.plan, "plan", "", "YAML analysis plan (default PLAN_FILE, else the built-in plan)")
	cmd.Flags().StringVar(&f.output, "output", "", "file receiving a copy of the report (default OUTPUT_FILE, - to disable)")
	cmd.Flags().StringVar(&f.format, "format", "text", "report format: text, markdown or html")
	cmd.Flags().Float64Var(&f.alpha, "alpha", 0.05, "significance level (default SIGNIFICANCE_LEVEL)")
	cmd.Flags().StringVar(&f.order, "order", "", "category order: sorted or first_seen (default CATEGORY_ORDER)")
	cmd.Flags().BoolVar(&f.yates, "yates", false, "apply Yates continuity correction to 2x2 tables")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "pairs analyzed in parallel (default REPORT_WORKERS)")
	cmd.Flags().StringVar(&f.row, "row", "", "row variable for a single-pair report")
	cmd.Flags().StringVar(&f.col, "col", "", "column variable for a single-pair report")
	cmd.Flags().StringVar(&f.title, "title", "", "title for a single-pair report")
}

// applyReportFlags lets explicitly set flags override the environment
func applyReportFlags(cmd *cobra.Command, cfg *config.Config, f *reportFlags) {
	if f.data == "" {
		f.data = cfg.Data.DataFile
	}
	if f.plan == "" {
		f.plan = cfg.Data.PlanFile
	}
	if f.output == "" {
		f.output = cfg.Data.OutputFile
	}
	if !cmd.Flags().Changed("alpha") {
		f.alpha = cfg.Analysis.SignificanceLevel
	}
	if f.order == "" {
		f.order = string(cfg.Analysis.CategoryOrder)
	}
	if !cmd.Flags().Changed("yates") {
		f.yates = cfg.Analysis.YatesCorrection
	}
	if f.workers <= 0 {
		f.workers = cfg.Analysis.Workers
	}
}

func runReport(ctx context.Context, cfg *config.Config, f reportFlags) error {
	logger := internal.NewLogger(cfg.LogLevel)

	format, err := report.ParseFormat(f.format)
	if err != nil {
		return err
	}
	order, err := encoding.ParseOrder(f.order)
	if err != nil {
		return err
	}
	if (f.row == "") != (f.col == "") {
		return fmt.Errorf("--row and --col must be given together")
	}

	ds, err := loadDataset(f.data, logger)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(f.output)
	if err != nil {
		return err
	}
	defer closeOut()

	sense := senses.NewChiSquareSense(senses.ChiSquareOptions{Alpha: f.alpha, Order: order, YatesCorrection: f.yates})
	svc := app.NewAssociationReportService(senses.NewSenseEngine(sense, f.workers, logger), out, format, logger)

	if f.row != "" {
		rowVar, err := core.ParseVariableKey(f.row)
		if err != nil {
			return err
		}
		colVar, err := core.ParseVariableKey(f.col)
		if err != nil {
			return err
		}
		title := f.title
		if title == "" {
			title = fmt.Sprintf("%s vs %s", rowVar, colVar)
		}
		logger.Info("single pair %s x %s over %s (snapshot %s)", rowVar, colVar, ds.Name, ds.Fingerprint().Short())
		_, err = svc.Report(ctx, ds, rowVar, colVar, title)
		return err
	}

	plan, err := config.LoadPlan(f.plan)
	if err != nil {
		return err
	}
	res, err := svc.RunPlan(ctx, ds, plan)
	if res != nil && f.output != "-" {
		logger.Info("run %s: report saved to %s", res.RunID, f.output)
	}
	return err
}

func newProfileCmd() *cobra.Command {
	var data, planPath, columns, format string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print value counts of categorical columns",
		Long: `Print value counts, shares and normalized entropy for categorical columns.
Columns default to the plan's profile columns; unknown columns are skipped.

Example: assocreport profile --data police_shootings.xlsx --columns gender,flee`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if data == "" {
				data = cfg.Data.DataFile
			}
			if planPath == "" {
				planPath = cfg.Data.PlanFile
			}
			return runProfile(cmd.OutOrStdout(), cfg, data, planPath, columns, format)
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "CSV or XLSX data file (default DATA_FILE)")
	cmd.Flags().StringVar(&planPath, "plan", "", "YAML analysis plan supplying profile columns")
	cmd.Flags().StringVar(&columns, "columns", "", "comma-separated columns (overrides the plan)")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")

	return cmd
}

func runProfile(w io.Writer, cfg *config.Config, data, planPath, columns, format string) error {
	logger := internal.NewLogger(cfg.LogLevel)
	ds, err := loadDataset(data, logger)
	if err != nil {
		return err
	}

	cols := splitColumns(columns)
	if len(cols) == 0 {
		plan, err := config.LoadPlan(planPath)
		if err != nil {
			return err
		}
		cols = plan.ProfileColumns
	}

	profiles := profiling.ProfileColumns(ds, cols)
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(profiles)
	case "", "text":
		fmt.Fprintf(w, "Records: %d | Columns: %d\n", ds.Len(), len(ds.Columns()))
		return profiling.WriteText(w, profiles)
	}
	return fmt.Errorf("unknown profile format %q", format)
}

func newEncodeCmd() *cobra.Command {
	var data, out, order, columns string
	var fill bool

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Label-encode categorical columns to integers",
		Long: `Map every category of the selected columns to an integer code and write the
encoded rows as CSV, with the class mapping on stderr.

Example: assocreport encode --data police_shootings.xlsx --out encoded.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if data == "" {
				data = cfg.Data.DataFile
			}
			if order == "" {
				order = string(cfg.Analysis.CategoryOrder)
			}
			return runEncode(cmd.OutOrStdout(), cfg, data, out, order, columns, fill)
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "CSV or XLSX data file (default DATA_FILE)")
	cmd.Flags().StringVar(&out, "out", "", "output CSV path (default stdout)")
	cmd.Flags().StringVar(&order, "order", "", "code order: sorted or first_seen (default CATEGORY_ORDER)")
	cmd.Flags().StringVar(&columns, "columns", "", "comma-separated columns (default all)")
	cmd.Flags().BoolVar(&fill, "fill", true, "fill missing values with the plan defaults first")

	return cmd
}

func runEncode(stdout io.Writer, cfg *config.Config, data, out, orderName, columns string, fill bool) error {
	logger := internal.NewLogger(cfg.LogLevel)
	order, err := encoding.ParseOrder(orderName)
	if err != nil {
		return err
	}
	ds, err := loadDataset(data, logger)
	if err != nil {
		return err
	}
	if fill {
		plan, err := config.LoadPlan(cfg.Data.PlanFile)
		if err != nil {
			return err
		}
		ds = ds.FillMissing(plan.FillMissing)
	}
	if cols := splitColumns(columns); len(cols) > 0 {
		ds, err = ds.Select(cols)
		if err != nil {
			return err
		}
	}

	encoded, err := encoding.EncodeDataset(ds, order)
	if err != nil {
		return err
	}

	if out == "" {
		if err := encoded.WriteCSV(stdout); err != nil {
			return err
		}
	} else if err := writeEncodedFile(out, encoded); err != nil {
		return err
	}

	for _, col := range encoded.Columns {
		logger.Info("%s: %s", col, strings.Join(encoded.Encoders[col].Classes(), ", "))
	}
	return nil
}

func writeEncodedFile(path string, encoded *encoding.EncodedDataset) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.IOError("failed to create "+path, err)
	}
	if err := encoded.WriteCSV(f); err != nil {
		f.Close()
		return apperrors.IOError("failed to write "+path, err)
	}
	if err := f.Close(); err != nil {
		return apperrors.IOError("failed to close "+path, err)
	}
	return nil
}

func loadDataset(path string, logger *internal.Logger) (*dataset.Dataset, error) {
	if path == "" {
		return nil, fmt.Errorf("no data file: pass --data or set DATA_FILE")
	}
	ds, err := excel.NewDataReader(path).WithLogger(logger).ReadData()
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to load data file %s", path)
	}
	logger.Info("Loaded %d records from %s (%d columns, snapshot %s)", ds.Len(), path, len(ds.Columns()), ds.Fingerprint().Short())
	return ds, nil
}

// openOutput tees stdout to path; "-" writes to stdout only
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	tee, err := internal.OpenTee(os.Stdout, path)
	if err != nil {
		return nil, nil, err
	}
	return tee, func() {
		if err := tee.Close(); err != nil {
			fmt.Fprintln(os.Stderr, "failed to close output:", err)
		}
	}, nil
}

func splitColumns(s string) []string {
	var cols []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}
