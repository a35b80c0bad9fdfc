package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/validatorlabs/kms/config"
	"github.com/validatorlabs/kms/core"
	"github.com/validatorlabs/kms/internal/telemetry"
	"github.com/validatorlabs/kms/log"
)

func startCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the signing oracle",
		Long: "Builds the keyring from the configured providers and spawns one client " +
			"per configured validator. A keyring build failure aborts startup; session " +
			"failures are handled by each client's reconnect policy.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.GetLogger().WithModule("cmd.start")

			promAddr := ctx.Config.Global.PrometheusAddr
			if addr := viper.GetString(flagPrometheusAddr); addr != "" {
				promAddr = addr
			}
			if err := telemetry.ShutdownMetrics(cmd.Context()); err != nil {
				return fmt.Errorf("failed to shutdown the metrics subsystem with null exporter: %v", err)
			}
			if err := telemetry.InitializeMetrics(telemetry.ExporterProm{Addr: promAddr}); err != nil {
				return fmt.Errorf("failed to re-initialize the metrics subsystem with prometheus exporter: %v", err)
			}

			entries, err := ctx.BuildSigners()
			if err != nil {
				return err
			}
			keyring, err := core.NewKeyring(cmd.Context(), entries)
			if err != nil {
				return err
			}
			logger.Info("keyring built", "keys", keyring.Len())

			respawnDelay, err := ctx.Config.Global.RespawnDuration()
			if err != nil {
				return err
			}
			return core.StartService(cmd.Context(), ctx.Config.Validators, keyring,
				core.WithRespawnDelay(respawnDelay),
				core.WithMaxMsgLen(ctx.Config.Global.MaxMsgLen),
			)
		},
	}
	return prometheusFlag(cmd)
}
