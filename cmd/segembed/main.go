package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"segembed/internal/chunker"
	"segembed/internal/config"
	"segembed/internal/domain"
	"segembed/internal/embedding"
	"segembed/internal/logging"
	"segembed/internal/service"
	"segembed/internal/summarizer"
	"segembed/internal/tui"
	"segembed/internal/vectorstore"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, exportPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/segembed/config.yaml if not provided)")
	flag.StringVar(&exportPath, "export", "", "Write the trained model to this JSON file on exit (overrides model.export_path)")
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Println("Usage: segembed [--config=config.yaml] [--export=model.json] file1.txt [file2.txt ...]")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if exportPath != "" {
		cfg.Model.ExportPath = exportPath
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	emb, tok, err := embedding.New(cfg, logger)
	if err != nil {
		logger.Fatal("embedder init failed", zap.Error(err))
	}

	var ch domain.Chunker
	switch cfg.Chunker.Type {
	case "sentence", "":
		ch = chunker.NewSentenceChunker(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences)
	default:
		logger.Fatal("unknown chunker", zap.String("type", cfg.Chunker.Type))
	}

	st, err := vectorstore.New(cfg.VectorStore, logger.Named("vectorstore"))
	if err != nil {
		logger.Fatal("vector store init failed", zap.Error(err))
	}

	var sum domain.Summarizer
	switch cfg.Summarizer.Type {
	case "frequency", "":
		sum = summarizer.NewFrequencySummarizer(tok)
	default:
		logger.Fatal("unknown summarizer", zap.String("type", cfg.Summarizer.Type))
	}

	svc := service.NewRAGService(ch, emb, st, sum, tok, cfg.Summarizer.MaxSentences, logger.Named("service"))
	summary, err := svc.IngestDocuments(inputs)
	if err != nil {
		logger.Fatal("ingest failed", zap.Error(err))
	}

	m := tui.New(svc, tok, summary)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		logger.Fatal("tui failed", zap.Error(err))
	}

	if path := cfg.Model.ExportPath; path != "" {
		if err := svc.ExportModel(path); err != nil {
			logger.Error("model export failed", zap.String("path", path), zap.Error(err))
			os.Exit(1)
		}
		fmt.Printf("model written to %s\n", path)
	}
}
