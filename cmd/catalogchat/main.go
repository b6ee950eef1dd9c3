// Command catalogchat serves natural-language question answering over the
// product catalog.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/0xcro3dile/catalogchat-go/internal/adapters/embedding"
	"github.com/0xcro3dile/catalogchat-go/internal/adapters/filewatcher"
	"github.com/0xcro3dile/catalogchat-go/internal/adapters/llm"
	"github.com/0xcro3dile/catalogchat-go/internal/adapters/loader"
	"github.com/0xcro3dile/catalogchat-go/internal/adapters/vectordb"
	"github.com/0xcro3dile/catalogchat-go/internal/domain/catalog"
	"github.com/0xcro3dile/catalogchat-go/internal/domain/usecases"
	"github.com/0xcro3dile/catalogchat-go/internal/infrastructure/config"
	httpserver "github.com/0xcro3dile/catalogchat-go/internal/infrastructure/http"
	"github.com/0xcro3dile/catalogchat-go/internal/infrastructure/logging"
	"github.com/0xcro3dile/catalogchat-go/internal/infrastructure/metrics"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "catalogchat",
		Short: "Catalog question answering with retrieval and conversational fallback",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "catalogchat.toml", "path to TOML config file")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Load the catalog, build the index and serve the chat API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	root.AddCommand(serve)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logging.New(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Structured-load failures are the only fatal error class: a malformed
	// table aborts startup before anything is served.
	products, areas, rules, err := loadTables(cfg.Dataset)
	if err != nil {
		return err
	}
	store, err := catalog.Load(products, areas, rules)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	log.Info().
		Int("products", len(store.Products())).
		Int("areas", len(store.Areas())).
		Int("rules", len(store.Rules())).
		Msg("catalog loaded")

	embedder := embedding.NewOpenAIAdapter(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel)
	completer := llm.NewOpenAIAdapter(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.CompletionModel)
	vectorStore := vectordb.NewInMemoryStore()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// One-time blocking index build; embedding failure here aborts startup so
	// a partial index is never served.
	indexer := usecases.NewIndexUseCase(embedder, vectorStore, cfg.Index.ChunkSize, cfg.Index.ChunkOverlap)
	total := 0
	for _, table := range []catalog.Table{products, areas, rules} {
		n, err := indexer.Build(ctx, table.Name, table.Documents())
		if err != nil {
			return fmt.Errorf("building index: %w", err)
		}
		total += n
	}
	m.IndexedChunks.Set(float64(total))
	log.Info().Int("chunks", total).Msg("index built")

	watchDataset(ctx, log, cfg.Dataset.Dir)

	augmenter := usecases.NewAugmenter(store)
	resolver := usecases.NewResolverChain(usecases.NewRetriever(embedder, vectorStore), completer, cfg.Index.TopK)

	server := httpserver.NewServer(augmenter, resolver, completer, m, registry, log, cfg.Server.Addr)
	return server.Start(ctx)
}

func loadTables(cfg config.DatasetConfig) (products, areas, rules catalog.Table, err error) {
	products, err = loader.LoadCSV(filepath.Join(cfg.Dir, cfg.ProductsFile), "dataset")
	if err != nil {
		return
	}
	areas, err = loader.LoadCSV(filepath.Join(cfg.Dir, cfg.AreaCodeFile), "areacode")
	if err != nil {
		return
	}
	rules, err = loader.LoadCSV(filepath.Join(cfg.Dir, cfg.DeliveryFile), "delivery")
	return
}

// watchDataset warns when a catalog file changes after the one-time index
// build. The index is never rebuilt in-process; a restart picks up the edit.
func watchDataset(ctx context.Context, log zerolog.Logger, dir string) {
	watcher, err := filewatcher.NewFSNotifyWatcher(nil)
	if err != nil {
		log.Warn().Err(err).Msg("dataset watcher unavailable")
		return
	}
	events, err := watcher.Watch(ctx, dir)
	if err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("dataset watcher unavailable")
		watcher.Stop()
		return
	}
	go func() {
		defer watcher.Stop()
		for ev := range events {
			log.Warn().Str("path", ev.Path).Msg("catalog file changed; index is stale until restart")
		}
	}()
}
