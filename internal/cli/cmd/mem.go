package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/retain/internal/cli/styles"
	"github.com/bnema/retain/internal/config"
	"github.com/bnema/retain/internal/infrastructure/memory"
	"github.com/bnema/retain/internal/logging"
)

var memCmd = &cobra.Command{
	Use:   "mem",
	Short: "Show the memory figures the pressure monitor acts on",
	Long: `Read host memory from /proc/meminfo (or sysinfo) and the Go runtime heap
metrics, and report whether the configured [memory] thresholds consider the
process under pressure.`,
	RunE: runMem,
}

func init() {
	rootCmd.AddCommand(memCmd)
}

// memoryPolicy converts the [memory] config section.
func memoryPolicy(c config.MemoryConfig) memory.Policy {
	return memory.Policy{
		Interval:          c.Interval,
		MinAvailableRatio: c.MinAvailableRatio,
		MaxLimitRatio:     c.MaxLimitRatio,
		ShrinkFraction:    c.ShrinkFraction,
	}
}

func runMem(cmd *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	ctx := logging.WithComponent(app.Ctx(), "mem")
	stats, err := memory.NewProbe().Read(ctx)
	if err != nil {
		return fmt.Errorf("read memory: %w", err)
	}

	pressure := memoryPolicy(app.Config.Memory).UnderPressure(stats)
	fmt.Fprintln(cmd.OutOrStdout(), styles.NewMemoryRenderer(app.Theme).Render(stats, pressure))
	return nil
}
