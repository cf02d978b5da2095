// Command coachd runs the OpenCoach reminder daemon.
//
// The daemon watches a context document (a markdown file or a folder of .md
// notes), extracts reminders from it with an LLM whenever it changes, and
// fires a notification for each reminder when its time comes.
//
// Usage:
//
//	coachd [flags]            # run the daemon (default)
//	coachd [flags] list       # print all reminders
//	coachd [flags] due        # print reminders currently due (read-only)
//	coachd [flags] context    # render the watched context document
//
// Environment:
//
//	DEEPSEEK_API_KEY              DeepSeek API key
//	OPENCOACH_CONTEXT             Context file or folder (overrides config)
//	OPENCOACH_STORE               Store path (overrides config)
//	OPENCOACH_TELEGRAM_BOT_TOKEN  Telegram bot token
//	OPENCOACH_TELEGRAM_CHAT_ID    Telegram chat ID
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/VitaliiLakusta/OpenCoach/internal/api"
	"github.com/VitaliiLakusta/OpenCoach/internal/config"
	"github.com/VitaliiLakusta/OpenCoach/internal/engine"
	"github.com/VitaliiLakusta/OpenCoach/internal/extract"
	"github.com/VitaliiLakusta/OpenCoach/internal/notify"
	"github.com/VitaliiLakusta/OpenCoach/internal/reminder"
	"github.com/VitaliiLakusta/OpenCoach/internal/scheduler"
	"github.com/VitaliiLakusta/OpenCoach/internal/source"
	"github.com/VitaliiLakusta/OpenCoach/internal/ui"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	providerFlag := flag.String("provider", "", "Provider to use (deepseek, ollama)")
	modelFlag := flag.String("model", "", "Model name (overrides config)")
	contextFlag := flag.String("context", "", "Context file or folder (overrides config)")
	storeFlag := flag.String("store", "", "Store path (overrides config)")
	logLevel := flag.String("log-level", "", "Log level (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Apply CLI flag overrides
	if *providerFlag != "" {
		cfg.Provider = *providerFlag
	}
	if *modelFlag != "" {
		cfg.Model.Name = *modelFlag
	}
	if *contextFlag != "" {
		cfg.Source.Location = *contextFlag
	}
	if *storeFlag != "" {
		cfg.Store.Path = *storeFlag
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	log := newLogger(cfg.Log.Level)

	command := flag.Arg(0)
	if command == "" {
		command = "run"
	}

	switch command {
	case "run":
		err = runDaemon(cfg, log)
	case "list":
		err = printReminders(cfg, false)
	case "due":
		err = printReminders(cfg, true)
	case "context":
		err = printContext(cfg)
	default:
		err = fmt.Errorf("unknown command: %s (supported: run, list, due, context)", command)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().Timestamp().Logger()
}

func openStore(cfg *config.Config) (*reminder.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreSQLite:
		backend, err := reminder.NewSQLiteBackend(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		return reminder.NewStore(backend), nil
	default:
		return reminder.NewStore(reminder.NewFileBackend(cfg.Store.Path)), nil
	}
}

func runDaemon(cfg *config.Config, log zerolog.Logger) error {
	if err := cfg.Validate(); err != nil {
		if cfg.Provider == config.ProviderDeepSeek {
			fmt.Fprintf(os.Stderr, "Tip: Set DEEPSEEK_API_KEY environment variable or add it to config file\n")
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	provider, err := api.NewProvider(cfg.GetProviderConfig())
	if err != nil {
		return err
	}
	defer provider.Close()

	src := source.New(cfg.Source.Location)
	extractor := extract.NewLLMExtractor(
		provider,
		cfg.Model.Name,
		cfg.Model.MaxTokens,
		cfg.Model.Temperature,
		time.Duration(cfg.Extraction.Timeout)*time.Second,
	)
	eng := engine.New(store, src, extractor, log)

	var notifiers notify.Multi
	if cfg.Notify.Telegram.BotToken != "" && cfg.Notify.Telegram.ChatID != "" {
		notifiers = append(notifiers, notify.NewTelegram(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID, log))
	}
	if cfg.Notify.Console || len(notifiers) == 0 {
		notifiers = append(notifiers, notify.NewConsole(os.Stdout))
	}

	sched := scheduler.New(
		eng,
		notifiers,
		time.Duration(cfg.Scheduler.ExtractInterval)*time.Second,
		time.Duration(cfg.Scheduler.DueInterval)*time.Second,
		log,
	)

	if cfg.Source.Watch {
		changes := make(chan struct{}, 1)
		go func() {
			if err := source.Watch(ctx, cfg.Source.Location, changes, log); err != nil {
				log.Warn().Err(err).Msg("file watching disabled, polling only")
			}
		}()
		sched.TriggerOn(changes)
	}

	log.Info().
		Str("context", cfg.Source.Location).
		Str("store", cfg.Store.Path).
		Str("provider", provider.Name()).
		Msg("coachd starting")

	return sched.Run(ctx)
}

// printReminders shows the store contents without modifying anything.
// Unlike the due-check cycle, the "due" view does not mark reminders as
// delivered.
func printReminders(cfg *config.Config, dueOnly bool) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	doc, err := store.Load(context.Background())
	if err != nil && !errors.Is(err, reminder.ErrNotFound) {
		return err
	}

	now := time.Now()
	var reminders []reminder.Reminder
	if doc != nil {
		reminders = doc.Reminders
	}

	if dueOnly {
		var due []reminder.Reminder
		for _, r := range reminders {
			if r.DueAt(now) {
				due = append(due, r)
			}
		}
		reminders = due
	}

	fmt.Print(ui.FormatReminders(reminders, now))
	return nil
}

func printContext(cfg *config.Config) error {
	snap, err := source.New(cfg.Source.Location).Read()
	if errors.Is(err, source.ErrMissingSource) {
		fmt.Printf("No context document at %s\n", cfg.Source.Location)
		return nil
	}
	if err != nil {
		return err
	}

	out, err := ui.RenderMarkdown(snap.Text)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
