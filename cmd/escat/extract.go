package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dm/escat/internal/engine"
)

func newExtractCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <cluster|indices|mappings|settings>",
		Short: "Run a single extraction stage",
		Long: `Runs one collector stage and stages its records under the output root.
Intended for orchestrators that drive stages one at a time; follow with
"escat transform" once every stage has run.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{engine.TypeCluster, engine.TypeIndices, engine.TypeMappings, engine.TypeSettings},
		RunE: func(cmd *cobra.Command, args []string) error {
			stage, err := engine.ParseStage(args[0])
			if err != nil {
				return err
			}
			if stage == engine.StageTransform {
				return fmt.Errorf("use \"escat transform\" for the transform stage")
			}
			return runSingleStage(cmd, opts, stage, "")
		},
	}
}

func newTransformCmd(opts *rootOptions) *cobra.Command {
	var runID string
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Transform staged artifacts into catalog entities",
		Long: `Reads every staged cluster, indices and mappings artifact under the output
root and writes transformed/all_transformed_<run-id>.json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if runID == "" {
				runID = uuid.NewString()
			}
			return runSingleStage(cmd, opts, engine.StageTransform, runID)
		},
	}
	cmd.Flags().StringVar(&runID, "run-id", "", "identifier for the transformed artifact (default: random UUID)")
	return cmd
}

func runSingleStage(cmd *cobra.Command, opts *rootOptions, stage engine.Stage, runID string) error {
	cfg, err := opts.load(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg, logger, nil)
	if err != nil {
		return err
	}
	_, err = p.runner(runID, printProgress(cmd.OutOrStdout())).RunStage(cmd.Context(), stage)
	return err
}
