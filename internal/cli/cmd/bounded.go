package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/retain/internal/application/usecase"
	"github.com/bnema/retain/internal/cli/styles"
	"github.com/bnema/retain/internal/infrastructure/cache"
	"github.com/bnema/retain/internal/infrastructure/hashing"
	"github.com/bnema/retain/internal/logging"
)

var (
	boundedCapacity        int
	boundedCaseInsensitive bool
)

var boundedCmd = &cobra.Command{
	Use:   "bounded [op...]",
	Short: "Replay operations against a bounded cache",
	Long: `Replay operations in order against a fixed-capacity cache and show which
entries each put evicted.

Operations:
  key=value   put
  ?key        get
  -key        remove (use "--" before the first operation if it starts with -)

Updating an existing key keeps its place in the eviction order.

Examples:
  retain bounded --capacity 2 a=1 b=2 c=3 ?a
  retain bounded --case-insensitive Go=1 GO=2 ?go`,
	RunE: runBounded,
}

func init() {
	rootCmd.AddCommand(boundedCmd)
	boundedCmd.Flags().IntVarP(&boundedCapacity, "capacity", "c", 0, "maximum number of entries (default from config)")
	boundedCmd.Flags().BoolVarP(&boundedCaseInsensitive, "case-insensitive", "i", false, "compare keys with Unicode case folding (default from config)")
}

func runBounded(cmd *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	ops := make([]usecase.BoundedOp, 0, len(args))
	for _, arg := range args {
		op, err := usecase.ParseBoundedOp(arg)
		if err != nil {
			return err
		}
		ops = append(ops, op)
	}

	capacity := app.Config.Bounded.Capacity
	if cmd.Flags().Changed("capacity") {
		capacity = boundedCapacity
	}
	caseInsensitive := app.Config.Bounded.CaseInsensitive
	if cmd.Flags().Changed("case-insensitive") {
		caseInsensitive = boundedCaseInsensitive
	}

	strategy := hashing.Natural[string]()
	if caseInsensitive {
		strategy = hashing.CaseInsensitive()
	}

	ctx := logging.WithComponent(app.Ctx(), "bounded")
	c, err := cache.NewBounded[string, string](capacity, strategy,
		cache.WithLogger(*logging.FromContext(ctx)),
		cache.WithName("replay"),
	)
	if err != nil {
		return err
	}
	if len(ops) == 0 {
		logging.FromContext(ctx).Warn().Msg("no operations given")
	}

	out, err := usecase.NewReplayBoundedUseCase(c).Execute(ctx, usecase.ReplayBoundedInput{Ops: ops})
	if err != nil {
		return err
	}

	renderer := styles.NewBoundedRenderer(app.Theme)
	fmt.Fprintln(cmd.OutOrStdout(), renderer.Render(out, c.Stats()))
	return nil
}
