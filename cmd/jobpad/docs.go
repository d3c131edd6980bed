package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobpad/jobpad/internal/doc"
	"github.com/jobpad/jobpad/internal/model"
	"github.com/jobpad/jobpad/internal/schema"
	"github.com/jobpad/jobpad/internal/store"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List documents",
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

		metas, err := s.ListDocuments(context.Background())
		if err != nil {
			return err
		}
		if len(metas) == 0 {
			fmt.Println("no documents yet — run `jobpad edit` to create one")
			return nil
		}
		for _, m := range metas {
			title := m.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("%s  %s  %s\n", m.ID, m.UpdatedAt.Format("2006-01-02 15:04"), title)
		}
		return nil
	},
}

var docsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create an empty document and print its id",
	Args:  cobra.NoArgs,
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

		reg := schema.DefaultRegistry()
		d := doc.New(reg)
		data, err := doc.Serialize(d)
		if err != nil {
			return fmt.Errorf("serializing document: %w", err)
		}
		meta := model.DocumentMeta{ID: store.NewID(), UpdatedAt: time.Now().UTC()}
		if err := s.SaveDocument(context.Background(), meta, data); err != nil {
			return fmt.Errorf("saving document: %w", err)
		}
		fmt.Println(meta.ID)
		return nil
	},
}

var docsRmCmd = &cobra.Command{
	Use:   "rm <document-id>",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
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

		if err := s.DeleteDocument(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Println("deleted", args[0])
		return nil
	},
}

func init() {
	docsCmd.AddCommand(docsNewCmd)
	docsCmd.AddCommand(docsRmCmd)
	rootCmd.AddCommand(docsCmd)
}
