package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jobpad/jobpad/internal/model"
	"github.com/jobpad/jobpad/internal/store"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Inspect the records available to @-mentions",
}

var recordsListCmd = &cobra.Command{
	Use:   "list [kind]",
	Short: "List records, optionally of one kind",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		kinds := model.Kinds
		if len(args) == 1 {
			kind := model.RecordKind(args[0])
			if !kind.Valid() {
				return fmt.Errorf("unknown record kind %q (want one of %v)", args[0], model.Kinds)
			}
			kinds = []model.RecordKind{kind}
		}

		ctx := context.Background()
		total := 0
		for _, kind := range kinds {
			hits, err := s.SearchRecords(ctx, cfg.Editor.OwnerID, kind, "", 100)
			if err != nil {
				return err
			}
			for _, h := range hits {
				line := fmt.Sprintf("%-16s %s", h.Kind, h.Title)
				if h.Status != "" {
					line += "  [" + h.Status + "]"
				}
				fmt.Println(line)
				total++
			}
		}
		if total == 0 {
			fmt.Println("no records — run `jobpad records seed` for sample data")
		}
		return nil
	},
}

var recordsSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample records for trying out mentions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := store.Seed(context.Background(), s); err != nil {
			return err
		}
		fmt.Printf("seeded sample records for owner %q\n", store.DemoOwnerID)
		if cfg.Editor.OwnerID != store.DemoOwnerID {
			fmt.Printf("set editor.owner_id: %s in config.yaml to see them in the editor\n", store.DemoOwnerID)
		}
		return nil
	},
}

func init() {
	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsSeedCmd)
	rootCmd.AddCommand(recordsCmd)
}
