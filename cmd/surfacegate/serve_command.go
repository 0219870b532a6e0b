package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"surfacegate/internal/catalog"
	"surfacegate/internal/daemon"
	"surfacegate/internal/gateway"
	"surfacegate/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := catalog.Open(cfg)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			server, err := gateway.New(cfg, store, nil, logger)
			if err != nil {
				return err
			}

			d, err := daemon.New(cfg, store, server, logger)
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := d.Start(signalCtx); err != nil {
				return err
			}
			defer d.Stop()

			fmt.Fprintf(cmd.OutOrStdout(), "surfacegate listening on %s\n", d.Status().APIAddress)
			<-signalCtx.Done()
			return nil
		},
	}
}
