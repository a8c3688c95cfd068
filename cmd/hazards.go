package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/safemap/saferoute/internal/hazard"
)

var hazardsCmd = &cobra.Command{
	Use:   "hazards",
	Short: "Manage the hazard observation store",
}

var hazardsImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import hazard observations from a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate hazard store")
		}

		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrap(err, "open csv")
		}
		defer f.Close()

		obs, err := hazard.ReadCSV(f)
		if err != nil {
			return err
		}

		inserted, err := st.Insert(ctx, obs)
		if err != nil {
			return err
		}

		zap.L().Info("hazards imported",
			zap.String("file", args[0]),
			zap.Int("parsed", len(obs)),
			zap.Int64("inserted", inserted),
		)
		fmt.Printf("imported %d of %d observations\n", inserted, len(obs))
		return nil
	},
}

var hazardsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of stored hazard observations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate hazard store")
		}

		n, err := st.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

func init() {
	hazardsCmd.AddCommand(hazardsImportCmd)
	hazardsCmd.AddCommand(hazardsCountCmd)
	rootCmd.AddCommand(hazardsCmd)
}
