package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"seo_article_generator/config"
	"seo_article_generator/generator"
	"seo_article_generator/logging"
	"seo_article_generator/publisher"
	"seo_article_generator/server"
)

var verbose bool

func main() {
	configPath := flag.String("config", "config.env", "path to the key-value config file")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides SERVER_ADDR)")
	flag.BoolVar(&verbose, "v", false, "enable debug logs")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogMode, verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	pub, err := buildPublisher(cfg, logger, registry)
	if err != nil {
		logger.Error("startup failed", "error", err.Error())
		os.Exit(1)
	}

	// Web server mode
	if *serve {
		if cfg.LogMode == "prod" {
			gin.SetMode(gin.ReleaseMode)
		}
		srv, err := server.New(pub, logger, registry)
		if err != nil {
			logger.Error("startup failed", "error", err.Error())
			os.Exit(1)
		}
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		if listen == "" {
			listen = ":8000"
		}
		logger.Info("starting web server", "addr", listen, "provider", cfg.Provider, "model", cfg.Model)
		if err := http.ListenAndServe(listen, srv.Routes()); err != nil {
			logger.Error("server stopped", "error", err.Error())
			os.Exit(1)
		}
		return
	}

	if err := runOnce(context.Background(), cfg, pub, logger); err != nil {
		os.Exit(1)
	}
	fmt.Println(cfg.PreviewPath)
}

// runOnce generates a single article from the configured input file.
func runOnce(ctx context.Context, cfg config.Config, pub *publisher.Publisher, logger *logging.Logger) error {
	log := logger.With("mode", "cli")
	log.Info("generating article", "input", cfg.InputPath, "template", cfg.TemplatePath)
	if _, err := pub.PublishArticle(ctx); err != nil {
		log.Error("generation failed", "error", err.Error())
		return err
	}
	log.Info("article published", "article", cfg.ArticlePath, "preview", cfg.PreviewPath)
	return nil
}

func buildPublisher(cfg config.Config, logger *logging.Logger, reg prometheus.Registerer) (*publisher.Publisher, error) {
	llm, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}
	retry := generator.RetryPolicy{
		Attempts:  cfg.Attempts,
		BaseDelay: cfg.RetryDelay,
		Logger:    logger,
		Metrics:   generator.NewMetrics(reg),
	}
	agent, err := generator.NewAgent(llm, retry, logger, generator.AgentOptions{
		ChunkMaxTokens:   cfg.ChunkTokens,
		Prompt:           generator.PromptOptions{CaptionLanguage: cfg.CaptionLang},
		MarkdownFallback: cfg.MDFallback,
	})
	if err != nil {
		return nil, err
	}
	return publisher.New(publisher.Paths{
		Input:    cfg.InputPath,
		Template: cfg.TemplatePath,
		Article:  cfg.ArticlePath,
		Preview:  cfg.PreviewPath,
	}, cfg.Placeholder, agent, logger)
}

func buildLLM(cfg config.Config) (generator.LLMClient, error) {
	settings := &generator.LLMSettings{
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		MaxTokens: cfg.MaxTokens,
		Timeout:   cfg.LLMTimeout,
	}
	switch cfg.Provider {
	case "openai":
		return generator.NewOpenAILLMFromConfig(settings)
	case "deepseek":
		// DeepSeek exposes an OpenAI-compatible API; base_url points at it.
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires LLM_BASE_URL (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAILLMFromConfig(settings)
	case "mock":
		return generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}
