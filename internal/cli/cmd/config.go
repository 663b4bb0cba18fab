package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bnema/retain/internal/cli/styles"
	"github.com/bnema/retain/internal/config"
)

var configSchemaWrite bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Show the effective configuration, print its JSON schema, or write a default config file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Print every setting after merging defaults, config.toml and RETAIN_ environment variables.`,
	RunE:  runConfigShow,
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of config.toml",
	Long: `Print the JSON schema describing config.toml. With --write the schema is
saved next to config.toml so editors can validate it.`,
	RunE: runConfigSchema,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config.toml",
	Long:  `Create config.toml with default values and its JSON schema. Existing files are never overwritten.`,
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSchemaCmd)
	configCmd.AddCommand(configInitCmd)
	configSchemaCmd.Flags().BoolVar(&configSchemaWrite, "write", false, "write the schema next to config.toml instead of printing it")
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	renderer := styles.NewConfigRenderer(app.Theme)
	path := app.Manager.ConfigFile()
	if _, err := os.Stat(path); err != nil {
		path = ""
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, renderer.RenderConfigInfo(path))
	fmt.Fprintln(out)
	fmt.Fprint(out, renderer.RenderSettings(app.Manager.Settings()))
	return nil
}

func runConfigSchema(cmd *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	if !configSchemaWrite {
		data, err := config.MarshalSchema()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	dir := filepath.Dir(app.Manager.SchemaFile())
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	path, err := config.WriteSchemaFile(dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	path, err := app.Manager.WriteDefault()
	if err != nil {
		return err
	}
	renderer := styles.NewConfigRenderer(app.Theme)
	fmt.Fprint(cmd.OutOrStdout(), renderer.RenderWritten(path, app.Manager.SchemaFile()))
	return nil
}
