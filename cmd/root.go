package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/validatorlabs/kms/config"
	"github.com/validatorlabs/kms/internal/telemetry"
	"github.com/validatorlabs/kms/log"
)

const (
	flagHome  = "home"
	flagDebug = "debug"
)

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kms"
	}
	return filepath.Join(home, ".kms")
}

// Execute builds the command tree with the given provider modules registered
// and runs it. This is called by main.main().
func Execute(modules ...config.ProviderModule) error {
	ctx := &config.Context{Modules: modules}

	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:   "kms",
		Short: "Remote signing oracle for validator nodes",
		Long: "kms holds validator signing keys and dials out to configured validators, " +
			"serving their signing requests so the validator process never touches key material.",
	}
	rootCmd.SilenceUsage = true

	rootCmd.PersistentFlags().String(flagHome, defaultHome(), "home directory for the config file")
	rootCmd.PersistentFlags().Bool(flagDebug, false, "enable debug logging")
	if err := viper.BindPFlag(flagHome, rootCmd.PersistentFlags().Lookup(flagHome)); err != nil {
		return err
	}
	if err := viper.BindPFlag(flagDebug, rootCmd.PersistentFlags().Lookup(flagDebug)); err != nil {
		return err
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return initConfig(ctx, cmd)
	}

	rootCmd.AddCommand(
		configCmd(ctx),
		keysCmd(ctx),
		startCmd(ctx),
	)

	return rootCmd.Execute()
}

// initConfig reads `homeDir/config/config.yaml` into ctx.Config before each
// command and initializes logging and the null metrics exporter. Commands
// that need a live exporter re-initialize it themselves.
func initConfig(ctx *config.Context, cmd *cobra.Command) error {
	home, err := cmd.Flags().GetString(flagHome)
	if err != nil {
		return err
	}
	ctx.ConfigPath = filepath.Join(home, "config", "config.yaml")

	if _, err := os.Stat(ctx.ConfigPath); err == nil {
		cfg, err := config.LoadConfig(ctx.ConfigPath)
		if err != nil {
			return err
		}
		ctx.Config = cfg
	} else {
		cfg := config.DefaultConfig()
		ctx.Config = &cfg
	}

	logLevel := ctx.Config.Global.LogLevel
	if debug, _ := cmd.Flags().GetBool(flagDebug); debug {
		logLevel = "debug"
	}
	if err := log.InitLogger(logLevel, ctx.Config.Global.LogFormat, ctx.Config.Global.LogOutput, true); err != nil {
		return err
	}

	return telemetry.InitializeMetrics(telemetry.ExporterNull{})
}

func noCommand(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}
