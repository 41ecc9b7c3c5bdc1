package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/amgst/mapapp2/internal/catalog"
	"github.com/amgst/mapapp2/internal/config"
	"github.com/amgst/mapapp2/internal/db"
	"github.com/amgst/mapapp2/internal/design"
	"github.com/amgst/mapapp2/internal/embed"
	"github.com/amgst/mapapp2/internal/locator"
	"github.com/amgst/mapapp2/internal/mcp"
	"github.com/amgst/mapapp2/internal/session"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"serve": true, "catalog": true, "frame": true, "stores": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   _ __ ___   __ _ _ __
  | '_ ' _ \ / _' | '_ \
  | | | | | | (_| | |_) |
  |_| |_| |_|\__,_| .__/
                  |_|

  Engraved-product customization builder

  Usage: mapbuilder <command> [options]
         mapbuilder --help

  MCP server mode requires piped input.`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before any setup (nothing needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".mapbuilder")

	database, err := db.Init(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	db.ConfigurePool(database, db.PoolLimits{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load catalog: %v\n", err)
		os.Exit(1)
	}

	env := &appEnv{
		database: database,
		cfg:      cfg,
		catalog:  cat,
		stores:   locator.NewRepository(database),
	}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(env)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'mapbuilder --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default). The MCP client drives one builder
	// session; child→parent messages go to stderr as JSON lines so
	// they stay out of the MCP stdout stream.
	ctrl := session.New(session.Config{
		Catalog:   cat,
		Store:     design.NewStore(),
		Embed:     embed.Standalone(),
		Bridge:    embed.NewBridge(embed.BridgeConfig{Channel: embed.NewStdioChannel(os.Stderr)}),
		SaveDelay: time.Duration(cfg.SaveDelayMS) * time.Millisecond,
	})

	if err := mcp.Run(cat, ctrl, env.stores, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
