package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/spellbook/internal/config"
	"github.com/hpungsan/spellbook/internal/errors"
	"github.com/hpungsan/spellbook/internal/logging"
	"github.com/hpungsan/spellbook/internal/ops"
	"github.com/hpungsan/spellbook/internal/spell"
	"github.com/hpungsan/spellbook/internal/web"
)

// cliEnv is shared by every command. logger is set by the app's Before hook.
type cliEnv struct {
	db     *sql.DB
	cfg    *config.Config
	logger *zap.Logger
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	env := &cliEnv{db: db, cfg: cfg, logger: zap.NewNop()}

	app := &cli.App{
		Name:    "spellbook",
		Usage:   "Spell dataset to EPUB packager",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "Log pipeline progress to stderr"},
		},
		Before: func(c *cli.Context) error {
			logger, err := logging.New(logOptions(env.cfg, c.Bool("verbose")))
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}
			env.logger = logger
			return nil
		},
		After: func(_ *cli.Context) error {
			_ = env.logger.Sync()
			return nil
		},
		Commands: []*cli.Command{
			buildCmd(env),
			verifyCmd(env),
			importCmd(env),
			importsCmd(env),
			listCmd(env),
			showCmd(env),
			categoriesCmd(env),
			serveCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// logOptions picks the CLI log level. --verbose wins over the configured
// level; without either only warnings are shown.
func logOptions(cfg *config.Config, verbose bool) logging.Options {
	opts := logging.Verbose(verbose)
	if cfg == nil {
		return opts
	}
	if !verbose && cfg.LogLevel != "" {
		opts.Level = cfg.LogLevel
	}
	opts.Format = cfg.LogFormat
	return opts
}

// workingSetFlags are shared by build and list.
func workingSetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "category", Aliases: []string{"c"}, Usage: "Category to include (repeatable or comma-separated)"},
		&cli.IntFlag{Name: "level", Usage: "Only spells of exactly this level"},
		&cli.BoolFlag{Name: "all-levels", Usage: "Ignore a configured level restriction"},
		&cli.IntFlag{Name: "max-spells", Usage: "Keep only the first N spells by name (0 for no cap)"},
	}
}

// workingSet reads the working set flags.
func workingSet(c *cli.Context) ops.WorkingSet {
	ws := ops.WorkingSet{
		Categories: c.StringSlice("category"),
		AllLevels:  c.Bool("all-levels"),
	}
	if c.IsSet("level") {
		level := c.Int("level")
		ws.Level = &level
	}
	if c.IsSet("max-spells") {
		limit := c.Int("max-spells")
		ws.Limit = &limit
	}
	return ws
}

// buildCmd creates the build command.
func buildCmd(env *cliEnv) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "Dataset file (default: build from the catalog)"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output .epub path (default: ~/.spellbook/exports/<title>.epub)"},
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Book title"},
		&cli.StringFlag{Name: "creator", Usage: "Book creator"},
		&cli.BoolFlag{Name: "strict", Usage: "Fail on the first malformed record"},
	}
	return &cli.Command{
		Name:  "build",
		Usage: "Build an EPUB from a dataset file or the catalog",
		Flags: append(flags, workingSetFlags()...),
		Action: func(c *cli.Context) error {
			output, err := ops.Build(c.Context, env.db, env.cfg, env.logger, ops.BuildInput{
				Input:      c.String("input"),
				Output:     c.String("output"),
				WorkingSet: workingSet(c),
				Title:      c.String("title"),
				Creator:    c.String("creator"),
				Strict:     c.Bool("strict"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// verifyCmd creates the verify command.
func verifyCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Check the structure of a built EPUB",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Package to verify"},
		},
		Action: func(c *cli.Context) error {
			path := c.String("path")
			if c.NArg() > 0 {
				path = c.Args().First()
			}
			if path == "" {
				return outputError(errors.NewInvalidRequest("path is required"))
			}

			output, err := ops.Verify(env.cfg, ops.VerifyInput{Path: path})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Load a dataset file into the catalog",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "Dataset file"},
			&cli.BoolFlag{Name: "strict", Usage: "Fail on the first malformed record"},
		},
		Action: func(c *cli.Context) error {
			path := c.String("input")
			if c.NArg() > 0 {
				path = c.Args().First()
			}

			output, err := ops.Import(c.Context, env.db, env.cfg, env.logger, ops.ImportInput{
				Path:   path,
				Strict: c.Bool("strict"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// importsCmd creates the imports command.
func importsCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "imports",
		Usage: "Show recent catalog imports",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum imports to show"},
			&cli.BoolFlag{Name: "json", Usage: "Always print JSON"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.History(c.Context, env.db, c.Int("limit"))
			if err != nil {
				return outputError(err)
			}
			if !wantTable(c) {
				return outputJSON(output)
			}

			rows := make([][]string, len(output.Items))
			for i, imp := range output.Items {
				rows[i] = []string{
					imp.ID,
					imp.Source,
					strconv.Itoa(imp.Records),
					strconv.Itoa(imp.Skipped),
					time.Unix(imp.CreatedAt, 0).Format(time.DateTime),
				}
			}
			fmt.Println(renderTable(importColumns, rows))
			return nil
		},
	}
}

// listCmd creates the list command.
func listCmd(env *cliEnv) *cli.Command {
	flags := []cli.Flag{
		&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Page size"},
		&cli.IntFlag{Name: "offset", Usage: "Page offset"},
		&cli.BoolFlag{Name: "json", Usage: "Always print JSON"},
	}
	return &cli.Command{
		Name:  "list",
		Usage: "List catalog spells in the working set",
		Flags: append(flags, workingSetFlags()...),
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, env.db, env.cfg, ops.ListInput{
				WorkingSet: workingSet(c),
				PageLimit:  c.Int("limit"),
				Offset:     c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			if !wantTable(c) {
				return outputJSON(output)
			}

			rows := make([][]string, len(output.Items))
			for i, s := range output.Items {
				rows[i] = []string{s.Name, s.School, formatLevels(s.Levels), s.Summary}
			}
			fmt.Println(renderTable(spellColumns, rows))
			p := output.Pagination
			fmt.Printf("%d-%d of %d\n", min(p.Offset+1, p.Total), min(p.Offset+len(rows), p.Total), p.Total)
			return nil
		},
	}
}

// showCmd creates the show command.
func showCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one catalog spell",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "normalize", Usage: "Rewrite the description through the markup normalizer"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Fetch(c.Context, env.db, ops.FetchInput{
				Name:      strings.Join(c.Args().Slice(), " "),
				Normalize: c.Bool("normalize"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// categoriesCmd creates the categories command.
func categoriesCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "List spell-list categories with catalog counts",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Always print JSON"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Categories(c.Context, env.db)
			if err != nil {
				return outputError(err)
			}
			if !wantTable(c) {
				return outputJSON(output)
			}

			rows := make([][]string, len(output.Items))
			for i, item := range output.Items {
				rows[i] = []string{item.Name, strconv.Itoa(item.Spells)}
			}
			fmt.Println(renderTable(categoryColumns, rows))
			return nil
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Preview the catalog in a browser",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to listen on"},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 0 || port > 65535 {
				return outputError(errors.NewInvalidRequest("port must be between 0 and 65535"))
			}
			srv := web.NewServer(env.db, env.cfg, env.logger, Version, c.String("bind"), port)
			fmt.Fprintf(os.Stderr, "Catalog preview at http://%s\n", srv.Addr)
			if err := web.Run(srv, env.logger); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	sErr := errors.As(err)
	return cli.Exit(fmt.Sprintf("[%s] %s", sErr.Code, sErr.Message), 1)
}

// wantTable reports whether results should be printed as a table: stdout is
// a terminal and --json was not given.
func wantTable(c *cli.Context) bool {
	return !c.Bool("json") && isTerminal(os.Stdout)
}

// formatLevels renders levels as "Cleric 2, Paladin 2".
func formatLevels(levels []spell.CategoryLevel) string {
	parts := make([]string, len(levels))
	for i, cl := range levels {
		parts[i] = cl.Category.String() + " " + strconv.Itoa(cl.Level)
	}
	return strings.Join(parts, ", ")
}
