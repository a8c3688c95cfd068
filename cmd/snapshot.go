package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect built network snapshots",
}

var snapshotStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Build all snapshots and print their sizes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		hazardCount, err := env.Store.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("hazards: %d\n", hazardCount)

		for _, mode := range env.Manager.Modes() {
			s, err := env.Manager.Snapshot(mode)
			if err != nil {
				fmt.Printf("%s: not built (%v)\n", mode, err)
				continue
			}
			fmt.Printf("%s: %d nodes, %d edges, %d profiles, built %s\n",
				mode, len(s.Nodes), len(s.Edges), len(s.Profiles),
				s.BuiltAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotStatusCmd)
	rootCmd.AddCommand(snapshotCmd)
}
