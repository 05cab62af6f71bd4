// Command docqa answers questions over a local document corpus. It indexes a
// directory of text, markdown, and HTML files, then serves questions either
// one-shot, as an interactive session, or as an MCP server over stdio.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/urfave/cli/v2"

	"github.com/sweetpotato0/docqa/config"
	cacheredis "github.com/sweetpotato0/docqa/contrib/cache/redis"
	openaiemb "github.com/sweetpotato0/docqa/contrib/embedder/openai"
	"github.com/sweetpotato0/docqa/contrib/generator/claude"
	"github.com/sweetpotato0/docqa/contrib/generator/gemini"
	openaigen "github.com/sweetpotato0/docqa/contrib/generator/openai"
	historymongo "github.com/sweetpotato0/docqa/contrib/history/mongo"
	"github.com/sweetpotato0/docqa/contrib/vector/inmemory"
	"github.com/sweetpotato0/docqa/contrib/vector/pg"
	"github.com/sweetpotato0/docqa/llm"
	"github.com/sweetpotato0/docqa/mcpserver"
	"github.com/sweetpotato0/docqa/pkg/logging"
	"github.com/sweetpotato0/docqa/pkg/telemetry"
	"github.com/sweetpotato0/docqa/rag/agentic"
	"github.com/sweetpotato0/docqa/rag/chunking"
	"github.com/sweetpotato0/docqa/rag/loader"
	"github.com/sweetpotato0/docqa/rag/retriever"
	"github.com/sweetpotato0/docqa/vector"
)

func main() {
	app := &cli.App{
		Name:  "docqa",
		Usage: "Question answering over a directory of documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "docs",
				Aliases: []string{"d"},
				Usage:   "Directory of .txt, .md and .html files to index",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log each pipeline stage as it runs",
			},
		},
		Action: chatCommand,
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Answer a single question and exit",
				ArgsUsage: "<question>",
				Action:    askCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the question answering tools over MCP stdio",
				Action: mcpCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "docqa:", err)
		os.Exit(1)
	}
}

// pipeline bundles everything a command needs, plus cleanup.
type pipeline struct {
	orchestrator *agentic.Orchestrator
	retriever    *retriever.Retriever
	cache        *cacheredis.AnswerCache
	history      *historymongo.HistoryStore
	cfg          *config.Config
	shutdown     []func(context.Context) error
}

func (p *pipeline) close(ctx context.Context) {
	for i := len(p.shutdown) - 1; i >= 0; i-- {
		if err := p.shutdown[i](ctx); err != nil {
			logging.Logger().Warn("shutdown step failed", "error", err)
		}
	}
}

func buildPipeline(ctx context.Context, verbose bool) (*pipeline, error) {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &pipeline{cfg: cfg}

	stopTracing, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: "docqa",
		Endpoint:    cfg.OTLPEndpoint,
		Disable:     cfg.OTLPEndpoint == "" && !verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	p.shutdown = append(p.shutdown, stopTracing)

	gen, err := buildGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	embedder := vector.NormalizedEmbedder(openaiemb.New(&openaiemb.Config{
		APIKey:    cfg.OpenAIKey,
		BaseURL:   cfg.OpenAIBaseURL,
		Model:     openaisdk.EmbeddingModel(cfg.EmbeddingModel),
		Dimension: cfg.EmbeddingDimension,
	}))
	chunker := chunking.NewWordChunker(
		chunking.WithChunkSize(cfg.ChunkSize),
		chunking.WithOverlap(cfg.ChunkOverlap),
	)
	p.retriever = retriever.New(store, embedder, chunker)

	p.orchestrator, err = agentic.New(gen, p.retriever,
		agentic.WithFanOut(cfg.FanOut),
		agentic.WithMaxIterations(cfg.MaxIterations),
		agentic.WithVerbose(verbose),
	)
	if err != nil {
		return nil, fmt.Errorf("build orchestrator: %w", err)
	}

	if cfg.RedisAddr != "" {
		p.cache = cacheredis.NewAnswerCache(&cacheredis.CacheConfig{Addr: cfg.RedisAddr})
		if err := p.cache.Ping(ctx); err != nil {
			return nil, fmt.Errorf("connect answer cache: %w", err)
		}
		p.shutdown = append(p.shutdown, func(context.Context) error { return p.cache.Close() })
	}
	if cfg.MongoURI != "" {
		history, err := historymongo.NewHistoryStore(&historymongo.HistoryConfig{
			URI:        cfg.MongoURI,
			Database:   "docqa",
			Collection: "query_history",
		})
		if err != nil {
			return nil, fmt.Errorf("connect query history: %w", err)
		}
		p.history = history
		p.shutdown = append(p.shutdown, history.Close)
	}

	return p, nil
}

func buildGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openaigen.New(openaigen.DefaultConfig().
			WithAPIKey(cfg.OpenAIKey).
			WithBaseURL(cfg.OpenAIBaseURL).
			WithModel(cfg.OpenAIModel)), nil
	case config.ProviderClaude:
		return claude.New(claude.DefaultConfig(cfg.AnthropicKey, "")), nil
	case config.ProviderGemini:
		return gemini.New(ctx, gemini.DefaultConfig(cfg.GeminiKey))
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

func buildStore(cfg *config.Config) (vector.VectorStore, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return inmemory.NewInMemoryVectorStore(), nil
	case config.StorePostgres:
		pgCfg := pg.DefaultPGVectorConfig()
		pgCfg.DSN = cfg.PostgresDSN
		pgCfg.Dimension = cfg.EmbeddingDimension
		return pg.NewPGVectorStore(pgCfg)
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

func indexDocs(ctx context.Context, p *pipeline, dir string) error {
	if dir == "" {
		return fmt.Errorf("--docs directory is required")
	}
	docs, err := loader.LoadDirectory(dir)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no loadable documents in %s", dir)
	}
	if err := p.retriever.IndexDocuments(ctx, docs...); err != nil {
		return fmt.Errorf("index documents: %w", err)
	}
	count, err := p.retriever.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Indexed %d documents (%d chunks) from %s\n", len(docs), count, dir)
	return nil
}

func answer(ctx context.Context, p *pipeline, question string) error {
	if p.cache != nil {
		cached, err := p.cache.Get(ctx, question, p.cfg.FanOut, p.cfg.MaxIterations)
		if err == nil {
			printResult(cached, true)
			return nil
		}
		if err != cacheredis.ErrCacheMiss {
			logging.Logger().Warn("answer cache lookup failed", "error", err)
		}
	}

	result, err := p.orchestrator.Query(ctx, question)
	if err != nil {
		return err
	}
	printResult(result, false)

	if p.cache != nil {
		if err := p.cache.Put(ctx, question, p.cfg.FanOut, p.cfg.MaxIterations, result); err != nil {
			logging.Logger().Warn("answer cache store failed", "error", err)
		}
	}
	if p.history != nil {
		if err := p.history.Record(ctx, question, result); err != nil {
			logging.Logger().Warn("query history record failed", "error", err)
		}
	}
	return nil
}

func printResult(result *agentic.Result, cached bool) {
	fmt.Println()
	fmt.Println(result.Answer)
	if len(result.Sources) > 0 {
		fmt.Printf("\nSources: %s\n", strings.Join(result.Sources, ", "))
	}
	if cached {
		fmt.Println("(cached)")
	} else {
		fmt.Printf("(%d iteration(s), %d passages)\n", len(result.Iterations), result.TotalDocsUsed)
	}
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("usage: docqa ask <question>")
	}

	ctx := c.Context
	p, err := buildPipeline(ctx, c.Bool("verbose"))
	if err != nil {
		return err
	}
	defer p.close(ctx)

	if err := indexDocs(ctx, p, c.String("docs")); err != nil {
		return err
	}
	return answer(ctx, p, question)
}

func chatCommand(c *cli.Context) error {
	ctx := c.Context
	p, err := buildPipeline(ctx, c.Bool("verbose"))
	if err != nil {
		return err
	}
	defer p.close(ctx)

	if err := indexDocs(ctx, p, c.String("docs")); err != nil {
		return err
	}

	fmt.Println("Ask questions about the indexed documents. Type 'exit' to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}
		if err := answer(ctx, p, question); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
	}
	return scanner.Err()
}

func mcpCommand(c *cli.Context) error {
	ctx := c.Context
	p, err := buildPipeline(ctx, c.Bool("verbose"))
	if err != nil {
		return err
	}
	defer p.close(ctx)

	// indexing up front is optional here, the index_documents tool can load
	// more at any time
	if dir := c.String("docs"); dir != "" {
		if err := indexDocs(ctx, p, dir); err != nil {
			return err
		}
	}

	server := mcpserver.NewServer("docqa", p.orchestrator, p.retriever)
	return mcpserver.Run(ctx, server)
}
