// Package main is the Kotae CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/chunker"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/filter"
	"github.com/hyperjump/kotae/internal/generation"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/query"
	"github.com/hyperjump/kotae/internal/retrieval"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
	"github.com/hyperjump/kotae/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kotae/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "kotae server" from the project dir uses the project's
// config (including debug).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ingest":
		runIngest()
	case "search":
		runSearch()
	case "chat":
		runChat()
	case "delete":
		runDelete()
	case "stats":
		runStats()
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(
		components.Engine,
		components.Registry,
		extract.NewExtractor(),
		components.Generator,
		filter.NewFilter(logger),
		&cfg.Server,
		cfg.Retrieval.ContextChunks,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if cfg.Storage.VectorIndexPath != "" && components.VectorIndex != nil {
		if err := components.VectorIndex.Save(cfg.Storage.VectorIndexPath); err != nil {
			logger.Warn("vector index save failed", zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(err))
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	category := fs.String("category", "", "document category")
	docID := fs.String("id", "", "document id (defaults to a generated UUID)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae ingest [flags] <file>")
		os.Exit(1)
	}
	path := fs.Arg(0)
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read file: %v\n", err)
		os.Exit(1)
	}

	req := models.IngestRequest{
		ID:       *docID,
		Filename: filepath.Base(path),
		Category: *category,
		Content:  string(content),
	}

	if *serverURL != "" {
		result, err := ingestViaHTTP(*serverURL, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Document ingested: %s (%d chunks)\n", result.DocumentID, result.ChunksStored)
		return
	}

	cfg, logger, components := directComponents(*configPath)
	defer logger.Sync()
	defer components.Close()

	parsed, err := extract.NewExtractor().Extract(req.Filename, req.Content)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Extraction failed: %v\n", err)
		os.Exit(1)
	}
	req.Content = parsed.Text

	result := components.Engine.Ingest(context.Background(), req)
	if !result.Success {
		fmt.Fprintf(os.Stderr, "Ingest failed for %s\n", req.Filename)
		os.Exit(1)
	}
	saveSnapshot(cfg, components, logger)
	fmt.Printf("Document ingested: %s (%d chunks)\n", result.DocumentID, result.ChunksStored)
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	topK := fs.Int("top-k", 5, "number of results")
	category := fs.String("category", "", "restrict to a category (\"all\" or empty = unrestricted)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae search [flags] <query>")
		os.Exit(1)
	}
	queryStr := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if queryStr == "" {
		fmt.Println("Usage: kotae search [flags] <query>")
		os.Exit(1)
	}

	req := models.SearchRequest{Query: queryStr, TopK: *topK, Category: *category}

	var matches []models.SearchMatch
	if *serverURL != "" {
		var err error
		matches, err = searchViaHTTP(*serverURL, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		_, logger, components := directComponents(*configPath)
		defer logger.Sync()
		defer components.Close()
		matches = components.Engine.Retrieve(context.Background(), queryStr, *topK, *category)
	}

	if len(matches) == 0 {
		fmt.Println("No results.")
		return
	}
	for _, m := range matches {
		fmt.Printf("%.3f  %s  [%s]\n    %s\n", m.Score, m.Filename, m.Category, utils.Truncate(m.Text, 160))
	}
}

func runChat() {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	topK := fs.Int("top-k", 5, "number of context candidates")
	category := fs.String("category", "", "restrict to a category")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae chat [flags] <question>")
		os.Exit(1)
	}
	question := strings.TrimSpace(strings.Join(fs.Args(), " "))

	body, _ := json.Marshal(models.ChatRequest{Query: question, TopK: *topK, Category: *category})
	resp, err := http.Post(*serverURL+"/api/v1/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Chat failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var out models.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fmt.Fprintf(os.Stderr, "Decode failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(out.Answer)
	if len(out.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, s := range out.Sources {
			fmt.Printf("  %.3f  %s\n", s.Score, s.Filename)
		}
	}
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae delete [flags] <document-id>")
		os.Exit(1)
	}
	docID := fs.Arg(0)

	if *serverURL != "" {
		req, _ := http.NewRequest(http.MethodDelete, *serverURL+"/api/v1/documents/"+url.PathEscape(docID), nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Delete failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Document deleted: %s\n", docID)
		return
	}

	cfg, logger, components := directComponents(*configPath)
	defer logger.Sync()
	defer components.Close()

	if !components.Engine.Remove(context.Background(), docID) {
		fmt.Fprintf(os.Stderr, "Deletion failed: %s\n", docID)
		os.Exit(1)
	}
	saveSnapshot(cfg, components, logger)
	fmt.Printf("Document deleted: %s\n", docID)
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var stats retrieval.Stats
	if *serverURL != "" {
		res, err := statsViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
			os.Exit(1)
		}
		stats = *res
	} else {
		_, logger, components := directComponents(*configPath)
		defer logger.Sync()
		defer components.Close()
		res, err := components.Engine.Stats(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
			os.Exit(1)
		}
		stats = *res
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("documents:       %d\n", stats.Documents)
		fmt.Printf("total_vectors:   %d\n", stats.TotalVectors)
		fmt.Printf("dimension:       %d\n", stats.Dimension)
		fmt.Printf("index_fullness:  %.4f\n", stats.IndexFullness)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func ingestViaHTTP(serverURL string, req models.IngestRequest) (*models.IngestResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/documents", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var result models.IngestResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

func searchViaHTTP(serverURL string, req models.SearchRequest) ([]models.SearchMatch, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var out struct {
		Matches []models.SearchMatch `json:"matches"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Matches, nil
}

func statsViaHTTP(serverURL string) (*retrieval.Stats, error) {
	resp, err := http.Get(serverURL + "/api/v1/stats")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s retrieval.Stats
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// directComponents loads config and initializes the full stack for CLI
// commands that bypass the HTTP server.
func directComponents(configPath string) (*config.Config, *zap.Logger, *Components) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	return cfg, logger, components
}

func saveSnapshot(cfg *config.Config, components *Components, logger *zap.Logger) {
	if cfg.Storage.VectorIndexPath == "" {
		return
	}
	if err := components.VectorIndex.Save(cfg.Storage.VectorIndexPath); err != nil {
		logger.Warn("vector index save failed", zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(err))
	}
}

// Components holds initialized services.
type Components struct {
	Registry    *storage.Registry
	Embedder    embedding.Embedder
	VectorIndex vector.VectorIndex
	Generator   generation.Generator
	Engine      *retrieval.Engine
}

func (c *Components) Close() {
	if c.Registry != nil {
		_ = c.Registry.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.VectorIndex != nil {
		_ = c.VectorIndex.Close()
	}
	if c.Generator != nil {
		_ = c.Generator.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	registry, err := storage.NewRegistry(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize document registry: %w", err)
	}

	var embedder embedding.Embedder
	var generator generation.Generator
	switch cfg.Embedding.Provider {
	case "mock":
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
		generator = generation.NewMockGenerator()
	case "googleai", "":
		if cfg.Embedding.APIKey == "" {
			return nil, fmt.Errorf("embedding API key is required; set GOOGLE_AI_API_KEY or embedding.api_key")
		}
		primary := embedding.NewGoogleAIEmbedder(
			cfg.Embedding.BaseURL,
			cfg.Embedding.APIKey,
			cfg.Embedding.Model,
			cfg.Embedding.Dimensions,
			time.Duration(cfg.Embedding.TimeoutSeconds)*time.Second,
		)
		embedder = embedding.NewFallback(primary, logger)
		generator = generation.NewGoogleAIGenerator(
			cfg.Generation.BaseURL,
			cfg.Generation.APIKey,
			cfg.Generation.Model,
			cfg.Generation.MaxOutputTokens,
			time.Duration(cfg.Generation.TimeoutSeconds)*time.Second,
		)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: googleai, mock)", cfg.Embedding.Provider)
	}

	vectorIndex, err := vector.NewVectorIndex(&cfg.Vector, cfg.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	if cfg.Storage.VectorIndexPath != "" {
		if loadErr := vectorIndex.Load(cfg.Storage.VectorIndexPath); loadErr != nil {
			logger.Warn("vector index load skipped",
				zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(loadErr))
		}
	}
	logger.Info("vector index initialized", zap.String("type", cfg.Vector.IndexType))

	engine := retrieval.NewEngine(
		chunker.NewChunker(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap),
		embedder,
		vectorIndex,
		registry,
		query.NewAnalyzer(logger),
		retrieval.Options{
			DefaultTopK: cfg.Retrieval.DefaultTopK,
			MaxTopK:     cfg.Retrieval.MaxTopK,
		},
		logger,
	)

	return &Components{
		Registry:    registry,
		Embedder:    embedder,
		VectorIndex: vectorIndex,
		Generator:   generator,
		Engine:      engine,
	}, nil
}

func printUsage() {
	fmt.Println(`kotae - Retrieval-augmented answers over your documents

Usage:
  kotae server [flags]             Start the HTTP server
  kotae ingest [flags] <file>      Ingest a document
  kotae search [flags] <query>     Search document chunks
  kotae chat [flags] <question>    Ask a question (requires a running server)
  kotae delete [flags] <id>        Delete a document
  kotae stats [flags]              Show index and registry stats
  kotae version                    Show version
  kotae help                       Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kotae/config.yaml)
  --debug            Enable debug logging

Ingest Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --category string  Document category (default: general)
  --id string        Document id (default: generated UUID)

Search Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --top-k int        Number of results (default: 5)
  --category string  Restrict to a category ("all" or empty = unrestricted)

Chat Flags:
  --server string    Server URL (default: http://localhost:8080)
  --top-k int        Number of context candidates (default: 5)
  --category string  Restrict to a category

Stats Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Examples:
  kotae server
  kotae ingest --category hr handbook.md
  kotae search "refund policy"
  kotae chat "How do I request a refund?"
  kotae delete 7c9e6679-7425-40de-944b-e07fc1f90ae7
  kotae stats --output json`)
}
