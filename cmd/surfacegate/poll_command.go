package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"surfacegate/internal/assets"
	"surfacegate/internal/gateway"
	"surfacegate/internal/logging"
	"surfacegate/internal/manifest"
	"surfacegate/internal/poller"
	"surfacegate/internal/state"
)

func newPollCommand(ctx *commandContext) *cobra.Command {
	var engineFlag string
	var subfolderFlag string
	var intervalFlag int
	var budgetFlag int

	cmd := &cobra.Command{
		Use:   "poll <job-id>",
		Short: "Poll a job until it finishes and verify its artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			engine, err := ctx.engineFor(engineFlag)
			if err != nil {
				return err
			}

			opts := poller.OptionsFromConfig(cfg)
			if intervalFlag > 0 {
				opts.Interval = time.Duration(intervalFlag) * time.Second
			}
			if budgetFlag > 0 {
				opts.Budget = time.Duration(budgetFlag) * time.Second
			}

			out := cmd.OutOrStdout()
			lastState := state.Unknown
			opts.OnPoll = func(snapshot poller.Snapshot) {
				if snapshot.State == lastState {
					return
				}
				lastState = snapshot.State
				fmt.Fprintf(out, "%s  %3.0f%%  %s\n", snapshot.State, snapshot.Progress, snapshot.Message)
			}

			client := gateway.NewClient(*engine, nil)
			loader := manifest.NewLoader(cfg, *engine, nil, logging.NewNop())
			resolver := assets.NewResolver(engine.PublicPrefix)
			p := poller.New(client, loader, resolver, nil, opts, logging.NewNop())

			outcome, err := p.Run(cmd.Context(), args[0], subfolderFlag)
			if err != nil {
				return err
			}

			switch {
			case outcome.TimedOut:
				return fmt.Errorf("job %s still %s after %s (%d polls)",
					outcome.JobID, outcome.State, outcome.Elapsed.Round(time.Second), outcome.Polls)
			case outcome.Succeeded():
				fmt.Fprintf(out, "job %s complete after %d polls\n", outcome.JobID, outcome.Polls)
				for _, artifact := range outcome.Assets.Artifacts {
					fmt.Fprintf(out, "  %-9s %s\n", artifact.Kind, artifact.URL)
				}
				return nil
			default:
				return fmt.Errorf("job %s failed: %s", outcome.JobID, outcome.FailureDetail)
			}
		},
	}
	cmd.Flags().StringVarP(&engineFlag, "engine", "e", "", "Engine name")
	cmd.Flags().StringVar(&subfolderFlag, "subfolder", "", "Job subfolder")
	cmd.Flags().IntVar(&intervalFlag, "interval", 0, "Poll interval in seconds")
	cmd.Flags().IntVar(&budgetFlag, "budget", 0, "Total polling budget in seconds")
	return cmd
}
