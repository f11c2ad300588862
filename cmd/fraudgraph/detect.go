package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/fraudgraph/cmd/fraudgraph/internal"
	"github.com/zero-day-ai/fraudgraph/internal/config"
	"github.com/zero-day-ai/fraudgraph/internal/fraud"
	"github.com/zero-day-ai/fraudgraph/internal/report"
)

var (
	detectXLSX string

	launderingOpts   fraud.LaunderingOptions
	detectMinClients int
	rapidOpts        fraud.RapidOptions
	outlierOpts      fraud.OutlierOptions
	accelerationOpts fraud.AccelerationOptions
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Run fraud-pattern detection",
	Long: `Run one detection algorithm, or all of them, against the graph.

Thresholds left at zero use the detection section of the configuration.
--xlsx writes the result to a spreadsheet as well.`,
}

var detectLaunderingCmd = &cobra.Command{
	Use:   "laundering",
	Short: "Find two-hop transfer chains with similar amounts",
	Args:  cobra.NoArgs,
	RunE: withEngine(fraud.AlgLayeredLaundering, func(cmd *cobra.Command, e *fraud.Engine, args []string) (any, error) {
		return e.LayeredLaundering(cmd.Context(), launderingOpts)
	}),
}

var detectSharedDevicesCmd = &cobra.Command{
	Use:   "shared-devices",
	Short: "Find devices used by several clients",
	Args:  cobra.NoArgs,
	RunE: withEngine(fraud.AlgSharedDevices, func(cmd *cobra.Command, e *fraud.Engine, args []string) (any, error) {
		return e.SharedDevices(cmd.Context(), detectMinClients)
	}),
}

var detectRapidCmd = &cobra.Command{
	Use:   "rapid <account-id>",
	Short: "Find bursts of outgoing transactions from one account",
	Args:  cobra.ExactArgs(1),
	RunE: withEngine(fraud.AlgRapidSuccession, func(cmd *cobra.Command, e *fraud.Engine, args []string) (any, error) {
		return e.RapidSuccession(cmd.Context(), args[0], rapidOpts)
	}),
}

var detectOutliersCmd = &cobra.Command{
	Use:   "outliers",
	Short: "Find transactions far above the account average",
	Args:  cobra.NoArgs,
	RunE: withEngine(fraud.AlgOutlierAmounts, func(cmd *cobra.Command, e *fraud.Engine, args []string) (any, error) {
		return e.OutlierAmounts(cmd.Context(), outlierOpts)
	}),
}

var detectAccelerationCmd = &cobra.Command{
	Use:   "acceleration",
	Short: "Find accounts whose recent activity jumped",
	Args:  cobra.NoArgs,
	RunE: withEngine(fraud.AlgActivityAcceleration, func(cmd *cobra.Command, e *fraud.Engine, args []string) (any, error) {
		return e.ActivityAcceleration(cmd.Context(), accelerationOpts)
	}),
}

var detectRiskBucketsCmd = &cobra.Command{
	Use:   "risk-buckets",
	Short: "Aggregate transactions by risk band",
	Args:  cobra.NoArgs,
	RunE: withEngine(fraud.AlgRiskBuckets, func(cmd *cobra.Command, e *fraud.Engine, args []string) (any, error) {
		return e.RiskBuckets(cmd.Context())
	}),
}

var detectAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Run every account-independent algorithm",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close(ctx)

		result, err := rt.engine().RunAll(ctx, fraud.RunAllOptions{
			Laundering:   launderingOpts,
			MinClients:   detectMinClients,
			Outliers:     outlierOpts,
			Acceleration: accelerationOpts,
		})
		if err != nil {
			return err
		}

		sections := report.FromReport(result)
		if err := saveWorkbook(ctx, rt, sections...); err != nil {
			return err
		}

		if jsonOutput(cmd) {
			return formatter(cmd).PrintJSON(result)
		}
		for _, s := range sections {
			fmt.Fprintf(cmd.OutOrStdout(), "== %s ==\n", s.Name)
			if err := printRows(cmd, s.Rows); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	},
}

func init() {
	detectCmd.PersistentFlags().StringVar(&detectXLSX, "xlsx", "", "Also write the result to this .xlsx file")

	for _, c := range []*cobra.Command{detectLaunderingCmd, detectAllCmd} {
		c.Flags().IntVar(&launderingOpts.MaxGapDays, "max-gap-days", 0, "Longest delay between the two transfers, in days")
		c.Flags().Float64Var(&launderingOpts.MaxAmountDeviation, "max-amount-deviation", 0, "Largest relative difference between the two amounts")
	}
	for _, c := range []*cobra.Command{detectSharedDevicesCmd, detectAllCmd} {
		c.Flags().IntVar(&detectMinClients, "min-clients", 0, "Distinct clients that make a device shared")
	}
	detectRapidCmd.Flags().IntVar(&rapidOpts.MinTransactions, "min-transactions", 0, "Transactions per window")
	detectRapidCmd.Flags().IntVar(&rapidOpts.TimeWindowMinutes, "time-window", 0, "Window length in minutes")
	for _, c := range []*cobra.Command{detectOutliersCmd, detectAllCmd} {
		c.Flags().Float64Var(&outlierOpts.Multiplier, "multiplier", 0, "Multiple of the account average that counts as an outlier")
		c.Flags().Float64Var(&outlierOpts.AmountFloor, "amount-floor", 0, "Ignore transactions below this amount")
	}
	for _, c := range []*cobra.Command{detectAccelerationCmd, detectAllCmd} {
		c.Flags().IntVar(&accelerationOpts.Days, "days", 0, "Trailing window in days")
		c.Flags().Float64Var(&accelerationOpts.IncreaseThreshold, "increase-threshold", 0, "Minimum percentage increase")
	}

	detectCmd.AddCommand(
		detectLaunderingCmd,
		detectSharedDevicesCmd,
		detectRapidCmd,
		detectOutliersCmd,
		detectAccelerationCmd,
		detectRiskBucketsCmd,
		detectAllCmd,
	)
}

type detectFunc func(cmd *cobra.Command, e *fraud.Engine, args []string) (any, error)

// withEngine connects, runs fn and prints its rows. With --xlsx the rows are
// also saved as a one-sheet workbook named after the algorithm.
func withEngine(algorithm string, fn detectFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close(ctx)

		rows, err := fn(cmd, rt.engine(), args)
		if err != nil {
			return err
		}

		if err := saveWorkbook(ctx, rt, report.Section{Name: algorithm, Rows: rows}); err != nil {
			return err
		}
		return printRows(cmd, rows)
	}
}

// saveWorkbook writes sections to the --xlsx path, if one was given.
func saveWorkbook(ctx context.Context, rt *runtime, sections ...report.Section) error {
	if detectXLSX == "" {
		return nil
	}
	path, err := config.ExpandPath(detectXLSX)
	if err != nil {
		return internal.WrapError(internal.ExitValidationError, "invalid --xlsx path", err)
	}
	if err := report.Save(path, sections...); err != nil {
		return err
	}
	rt.logger.InfoContext(ctx, "report written", "path", path, "sheets", len(sections))
	return nil
}
