// Command mcp-reminder provides an MCP server for the OpenCoach reminder
// engine.
//
// The server exposes the engine's operations — extraction cycle, due check,
// acknowledgement and listing — as MCP tools over stdio, so an AI assistant
// can drive the reminder lifecycle on demand instead of waiting for the
// daemon's timers.
//
// Usage:
//
//	./mcp-reminder          # Start MCP server (stdio)
//	./mcp-reminder --help   # Show help
//
// Environment:
//
//	OPENCOACH_CONFIG  Path to config file (default: ~/.opencoach/config.yaml)
//	DEEPSEEK_API_KEY  DeepSeek API key (required for the extraction tool)
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/VitaliiLakusta/OpenCoach/internal/api"
	"github.com/VitaliiLakusta/OpenCoach/internal/config"
	"github.com/VitaliiLakusta/OpenCoach/internal/engine"
	"github.com/VitaliiLakusta/OpenCoach/internal/extract"
	"github.com/VitaliiLakusta/OpenCoach/internal/reminder"
	"github.com/VitaliiLakusta/OpenCoach/internal/source"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	configPath := os.Getenv("OPENCOACH_CONFIG")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	var backend reminder.Backend
	if cfg.Store.Backend == config.StoreSQLite {
		backend, err = reminder.NewSQLiteBackend(cfg.Store.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
			os.Exit(1)
		}
	} else {
		backend = reminder.NewFileBackend(cfg.Store.Path)
	}
	store := reminder.NewStore(backend)
	defer store.Close()

	provider, err := api.NewProvider(cfg.GetProviderConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create provider: %v\n", err)
		os.Exit(1)
	}
	defer provider.Close()

	extractor := extract.NewLLMExtractor(
		provider,
		cfg.Model.Name,
		cfg.Model.MaxTokens,
		cfg.Model.Temperature,
		time.Duration(cfg.Extraction.Timeout)*time.Second,
	)

	// Tool results carry the errors; the logger only sees debug detail.
	log := zerolog.New(os.Stderr).Level(zerolog.ErrorLevel)
	eng := engine.New(store, source.New(cfg.Source.Location), extractor, log)

	s := engine.NewServer(eng)

	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`MCP Reminder Server - OpenCoach reminder engine via MCP protocol

USAGE:
    mcp-reminder          Start MCP server (communicates via stdio)
    mcp-reminder --help   Show this help

ENVIRONMENT:
    OPENCOACH_CONFIG  Path to config file
                      Default: ~/.opencoach/config.yaml
    DEEPSEEK_API_KEY  DeepSeek API key (required for the extraction tool)

TOOLS:
    run_extraction_cycle  Re-extract reminders if the context document changed
    check_due_reminders   Return due reminders and mark them delivered
    acknowledge_reminders Mark reminders completed by dateTime keys
    list_reminders        List all reminders, pending and completed

CONFIGURATION:
    Add to your MCP client config:
    {
      "mcpServers": {
        "opencoach": {
          "command": "/path/to/mcp-reminder",
          "args": []
        }
      }
    }`)
}
