package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dm/escat/internal/client"
)

func newPreflightCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check that the cluster is reachable with the configured credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			c, err := client.NewDefaultClient(cfg.ClientConfig())
			if err != nil {
				return err
			}

			root, err := c.GetRoot(cmd.Context())
			if err != nil {
				return fmt.Errorf("preflight %s: %w", c.BaseURL(), err)
			}
			number := root.Version.Number
			if number == "" {
				number = "unknown"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "connected to %s: cluster %q, version %s\n", c.BaseURL(), root.ClusterName, number)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("escat version %s\n", version)
		},
	}
}
