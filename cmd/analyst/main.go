package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/domain"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/usecase"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/conf"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/data"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/service"
)

func main() {
	once := flag.Bool("once", false, "Run one analysis cycle and exit")
	search := flag.String("search", "", "Search WeChat contacts by keyword and exit")
	configPath := flag.String("config", "", "Analysis config YAML path")
	flag.Parse()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := conf.LoadFromEnv()
	if *configPath != "" {
		if err := cfg.LoadAnalysis(*configPath); err != nil {
			log.Fatalf("Invalid analysis config: %v", err)
		}
	}

	if logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
		log.Printf("[Analyst] Warning: cannot open log file %s: %v", cfg.LogFile, err)
	} else {
		defer logFile.Close()
		log.SetOutput(io.MultiWriter(os.Stdout, logFile))
	}

	// Initialize repository layer
	repos := data.NewRepositories(cfg)

	transcriptCfg, err := cfg.ToTranscriptConfig()
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	transcriptUC := usecase.NewTranscriptUsecase(repos.Chatlog, repos.Export, transcriptCfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *search != "" {
		if err := searchContacts(ctx, transcriptUC, *search); err != nil {
			log.Fatalf("Search failed: %v", err)
		}
		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize usecase layer
	analysisUC := usecase.NewAnalysisUsecase(transcriptUC, repos.Assistant, repos.Relay, cfg.ToAnalysisConfig())
	ucs := biz.Usecases{
		Transcript: transcriptUC,
		Analysis:   analysisUC,
		Job:        usecase.NewJobRunner(analysisUC, repos.Notifier, cfg.ToJobConfig()),
	}

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("[Analyst] Shutting down...")
		cancel()
	}()

	log.Printf("[Analyst] Target %s, backend %s, relay via %s", cfg.Wechat.TargetID, cfg.AI.Backend, cfg.Relay.Channel)

	if *once {
		_, outcome := ucs.Job.Run(ctx, domain.RetryState{})
		log.Printf("[Analyst] Cycle finished: %s", outcome.Kind)
		if outcome.Kind != domain.OutcomeSuccess {
			os.Exit(1)
		}
		return
	}

	times, err := cfg.Analysis.Times()
	if err != nil {
		log.Fatalf("Invalid schedule: %v", err)
	}

	scheduler := service.NewDailyScheduler(ucs.Job, times, nil)
	scheduler.Start(ctx)
	log.Printf("[Analyst] Scheduled at %v", cfg.Analysis.Schedule)

	<-ctx.Done()
	scheduler.Stop()
}

func searchContacts(ctx context.Context, uc *usecase.TranscriptUsecase, keyword string) error {
	contacts, err := uc.FindChats(ctx, keyword)
	if err != nil {
		return err
	}
	if len(contacts) == 0 {
		fmt.Printf("No contacts match %q\n", keyword)
		return nil
	}
	for _, c := range contacts {
		fmt.Printf("%s\t%s\n", c.UserID, c.Title)
	}
	return nil
}
