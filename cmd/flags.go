package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	flagPrometheusAddr = "prometheus-addr"
)

func prometheusFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().String(flagPrometheusAddr, "", "host address to which the prometheus exporter listens (overrides config)")
	if err := viper.BindPFlag(flagPrometheusAddr, cmd.Flags().Lookup(flagPrometheusAddr)); err != nil {
		panic(err)
	}
	return cmd
}
