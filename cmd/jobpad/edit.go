package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobpad/jobpad/internal/ai"
	"github.com/jobpad/jobpad/internal/doc"
	"github.com/jobpad/jobpad/internal/editor"
	"github.com/jobpad/jobpad/internal/mention"
	"github.com/jobpad/jobpad/internal/model"
	"github.com/jobpad/jobpad/internal/retry"
	"github.com/jobpad/jobpad/internal/schema"
	"github.com/jobpad/jobpad/internal/store"
)

var editCmd = &cobra.Command{
	Use:   "edit [document-id]",
	Short: "Open a document in the editor (creates one when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	logger := setupTUILogger(cfg, debug)

	s, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	reg := schema.DefaultRegistry()
	ctx := context.Background()

	var meta model.DocumentMeta
	var d *doc.Document
	if len(args) == 1 {
		loaded, content, err := s.LoadDocument(ctx, args[0])
		if err != nil {
			return fmt.Errorf("loading document: %w", err)
		}
		meta = *loaded
		d, err = doc.Deserialize(reg, content, logger)
		if err != nil {
			return fmt.Errorf("reading document: %w", err)
		}
	} else {
		meta = model.DocumentMeta{ID: store.NewID()}
		d = doc.New(reg)
	}

	var streamer ai.Streamer
	if cfg.AI.Enabled {
		httpClient := &http.Client{Timeout: cfg.AI.Timeout}
		streamer = ai.NewOpenAIStreamer(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, httpClient)
	} else {
		streamer = ai.NewNopStreamer()
	}

	deps := editor.Deps{
		Config:   cfg.Editor,
		Docs:     s,
		Searcher: mention.NewAggregator(s, logger),
		Getter:   retry.NewRetryGetter(s, 2, 200*time.Millisecond, logger),
		Nav:      logNavigator{logger: logger},
		Streamer: streamer,
		Logger:   logger,
	}

	return editor.Run(editor.New(deps, meta, d))
}

// logNavigator records navigation requests; full record views live in the
// companion web app, which is not reachable from the terminal session.
type logNavigator struct {
	logger *slog.Logger
}

func (n logNavigator) NavigateTo(route string) error {
	if route == "" {
		return errors.New("empty route")
	}
	n.logger.Info("navigate", "route", route)
	return nil
}
