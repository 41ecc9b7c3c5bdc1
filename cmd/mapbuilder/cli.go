package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"github.com/amgst/mapapp2/internal/catalog"
	"github.com/amgst/mapapp2/internal/config"
	"github.com/amgst/mapapp2/internal/errors"
	"github.com/amgst/mapapp2/internal/geometry"
	"github.com/amgst/mapapp2/internal/locator"
	"github.com/amgst/mapapp2/internal/session"
	"github.com/amgst/mapapp2/internal/shop"
	"github.com/amgst/mapapp2/internal/web"
)

// appEnv bundles the initialized runtime pieces the CLI commands use.
type appEnv struct {
	database *sql.DB
	cfg      *config.Config
	catalog  *catalog.Catalog
	stores   *locator.Repository
}

// newCLIApp creates the CLI application with all commands. env may be
// nil for the help/version path, which never reaches a command action.
func newCLIApp(env *appEnv) *cli.App {
	app := &cli.App{
		Name:    "mapbuilder",
		Usage:   "Engraved-product customization builder",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(env),
			catalogCmd(env),
			frameCmd(),
			storesCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command.
func serveCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the builder HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8080, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			logger := log.New(os.Stderr)

			var shopClient *shop.Client
			if env.cfg.ShopEndpoint != "" {
				shopClient = shop.NewClient(env.cfg.ShopEndpoint, env.cfg.ShopToken, nil)
			}

			delay := time.Duration(env.cfg.SaveDelayMS) * time.Millisecond
			srv := web.NewServer(web.Deps{
				Config:   env.cfg,
				Catalog:  env.catalog,
				Sessions: session.NewManager(env.catalog, delay),
				Stores:   env.stores,
				Shop:     shopClient,
				Logger:   logger,
			}, c.String("bind"), c.Int("port"))

			return web.Run(srv, logger)
		},
	}
}

// catalogCmd creates the catalog command.
func catalogCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "List the product catalog",
		Action: func(c *cli.Context) error {
			return outputJSON(env.catalog.Products())
		},
	}
}

// frameCmd creates the frame command.
func frameCmd() *cli.Command {
	return &cli.Command{
		Name:      "frame",
		Usage:     "Resolve an aspect ratio to preview dimensions",
		ArgsUsage: "<ratio>",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "max-width", Value: 600, Usage: "Maximum frame width"},
			&cli.Float64Flag{Name: "max-height", Value: 500, Usage: "Maximum frame height"},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 1 {
				return outputError(errors.NewInvalidRequest("ratio argument is required (e.g. 2.62:1)"))
			}
			frame, err := geometry.ResolveFrame(c.Args().First(), c.Float64("max-width"), c.Float64("max-height"))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(frame)
		},
	}
}

// storesCmd creates the stores command group.
func storesCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "stores",
		Usage: "Manage and query retail store locations",
		Subcommands: []*cli.Command{
			{
				Name:  "seed",
				Usage: "Load store locations from a JSON file (array of stores)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Path to JSON file (defaults to stdin)"},
				},
				Action: func(c *cli.Context) error {
					data, err := readSeedInput(c.String("file"))
					if err != nil {
						return outputError(err)
					}
					var stores []locator.Store
					if err := json.Unmarshal(data, &stores); err != nil {
						return outputError(errors.NewInvalidRequest(fmt.Sprintf("invalid store JSON: %v", err)))
					}
					if err := env.stores.Seed(c.Context, stores); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]int{"seeded": len(stores)})
				},
			},
			{
				Name:  "list",
				Usage: "List all store locations",
				Action: func(c *cli.Context) error {
					stores, err := env.stores.List(c.Context)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(stores)
				},
			},
			{
				Name:  "search",
				Usage: "Find stores near a coordinate",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "lat", Required: true, Usage: "Latitude"},
					&cli.Float64Flag{Name: "lng", Required: true, Usage: "Longitude"},
				},
				Action: func(c *cli.Context) error {
					results, err := env.stores.Search(c.Context, c.Float64("lat"), c.Float64("lng"))
					if err != nil {
						return outputError(err)
					}
					return outputJSON(results)
				},
			},
		},
	}
}

// readSeedInput reads seed data from a file, or from stdin when no
// file is given.
func readSeedInput(path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	if !stdinHasData() {
		return nil, errors.NewInvalidRequest("store JSON must be piped via stdin or passed with --file")
	}
	return io.ReadAll(os.Stdin)
}

// outputJSON prints a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if builderErr, ok := err.(*errors.BuilderError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", builderErr.Code, builderErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
