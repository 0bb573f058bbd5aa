package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"self-improving-agent/internal/adapter/memory"
	"self-improving-agent/internal/adapter/openai"
	"self-improving-agent/internal/adapter/openaigo"
	"self-improving-agent/internal/adapter/process"
	"self-improving-agent/internal/adapter/snapshot"
	"self-improving-agent/internal/adapter/telegram"
	"self-improving-agent/internal/adapter/workspace"
	"self-improving-agent/internal/config"
	"self-improving-agent/internal/usecase/loop"
	"self-improving-agent/internal/usecase/tools"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	files, err := workspace.Open(cfg.WorkspaceDir, cfg.DeniedPaths)
	if err != nil {
		log.Fatalf("failed to open workspace: %v", err)
	}
	defer files.Close()

	runner, err := process.NewRunner(files.Dir(), cfg.AllowedCommands, cfg.DeniedArgs, cfg.ProcessTimeout)
	if err != nil {
		log.Fatalf("failed to init process runner: %v", err)
	}

	dispatcher, err := tools.NewDispatcher(files, runner)
	if err != nil {
		log.Fatalf("failed to init tools: %v", err)
	}

	var client loop.Client
	switch cfg.Client {
	case config.ClientOpenAIGo:
		client = openaigo.NewClient(cfg.OpenAIKey, cfg.OpenAIBaseURL)
	default:
		client = openai.NewClient(cfg.OpenAIKey, cfg.OpenAIBaseURL)
	}

	history := memory.NewHistory(loop.BootstrapSize)
	snapshots := snapshot.NewFile(cfg.SnapshotPath)
	agent := loop.NewService(history, snapshots, client, dispatcher, cfg)

	if cfg.TelegramEnabled() {
		notifier, err := telegram.NewNotifier(cfg.TelegramToken, "", cfg.TelegramChatID)
		if err != nil {
			log.Fatalf("failed to init telegram notifier: %v", err)
		}
		agent.WithNotifier(notifier)
	}

	if err := agent.Bootstrap(); err != nil {
		log.Fatalf("failed to bootstrap history: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := agent.Run(ctx); err != nil {
		if ctx.Err() != nil {
			log.Printf("shutdown: %v", err)
			return
		}
		log.Fatalf("agent stopped with error: %v", err)
	}
}
