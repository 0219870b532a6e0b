package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"surfacegate/internal/assets"
	"surfacegate/internal/contract"
	"surfacegate/internal/gateway"
	"surfacegate/internal/logging"
	"surfacegate/internal/manifest"
	"surfacegate/internal/state"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Submit and inspect rendering jobs",
	}

	jobsCmd.AddCommand(newJobsSubmitCommand(ctx))
	jobsCmd.AddCommand(newJobsStatusCommand(ctx))
	jobsCmd.AddCommand(newJobsAssetsCommand(ctx))
	jobsCmd.AddCommand(newJobsLatestCommand(ctx))
	return jobsCmd
}

func newJobsSubmitCommand(ctx *commandContext) *cobra.Command {
	var engineFlag string
	var fileFlag string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a job payload to an engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.engineFor(engineFlag)
			if err != nil {
				return err
			}

			payload, err := readPayload(fileFlag)
			if err != nil {
				return err
			}

			client := gateway.NewClient(*engine, nil)
			status, env, err := client.SubmitJob(cmd.Context(), payload)
			if err != nil {
				return err
			}
			env.Status = string(state.Normalize(env.Status))
			fmt.Fprintf(cmd.OutOrStdout(), "engine responded %d\n", status)
			return printJSON(cmd.OutOrStdout(), env)
		},
	}
	cmd.Flags().StringVarP(&engineFlag, "engine", "e", "", "Engine name")
	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Payload file (defaults to stdin)")
	return cmd
}

func newJobsStatusCommand(ctx *commandContext) *cobra.Command {
	var engineFlag string

	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Fetch and validate a job's status envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.engineFor(engineFlag)
			if err != nil {
				return err
			}

			client := gateway.NewClient(*engine, nil)
			env, err := client.FetchJobStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			env.Status = string(state.Normalize(env.Status))
			return printJSON(cmd.OutOrStdout(), env)
		},
	}
	cmd.Flags().StringVarP(&engineFlag, "engine", "e", "", "Engine name")
	return cmd
}

func newJobsAssetsCommand(ctx *commandContext) *cobra.Command {
	var engineFlag string
	var subfolderFlag string

	cmd := &cobra.Command{
		Use:   "assets <job-id>",
		Short: "Resolve a job's published artifact URLs",
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

			loader := manifest.NewLoader(cfg, *engine, nil, logging.NewNop())
			loaded, err := loader.Load(cmd.Context(), args[0], subfolderFlag)
			if err != nil {
				return err
			}

			resolver := assets.NewResolver(engine.PublicPrefix)
			derived, err := resolver.Derive(loaded.Manifest, args[0], subfolderFlag)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(derived.Artifacts))
			for _, artifact := range derived.Artifacts {
				rows = append(rows, []string{string(artifact.Kind), artifact.URL})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]tableColumn{{title: "Kind"}, {title: "URL"}},
				rows,
			))
			fmt.Fprintf(cmd.OutOrStdout(), "manifest source: %s\n", loaded.Source)
			return nil
		},
	}
	cmd.Flags().StringVarP(&engineFlag, "engine", "e", "", "Engine name")
	cmd.Flags().StringVar(&subfolderFlag, "subfolder", "", "Job subfolder")
	return cmd
}

func newJobsLatestCommand(ctx *commandContext) *cobra.Command {
	var engineFlag string

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the most recently published job",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			engine, err := ctx.engineFor(engineFlag)
			if err != nil {
				return err
			}

			candidate, ok := gateway.FindLatestManifest(cfg.Paths.OutputDir)
			if !ok {
				return fmt.Errorf("no published jobs found under %s", cfg.Paths.OutputDir)
			}

			body, err := os.ReadFile(candidate.Path)
			if err != nil {
				return fmt.Errorf("read manifest: %w", err)
			}
			man, err := contract.AssertJobManifest(body)
			if err != nil {
				return err
			}

			resolver := assets.NewResolver(engine.PublicPrefix)
			derived, err := resolver.Derive(man, candidate.JobID, candidate.Subfolder)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), gateway.LatestJobResponse{
				JobID:       candidate.JobID,
				Subfolder:   candidate.Subfolder,
				Status:      string(state.Normalize(man.Status)),
				UpdatedAt:   man.UpdatedAt,
				ManifestURL: derived.BasePath + "/" + manifest.Filename,
			})
		},
	}
	cmd.Flags().StringVarP(&engineFlag, "engine", "e", "", "Engine name")
	return cmd
}

func readPayload(path string) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return data, nil
}
