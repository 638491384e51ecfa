package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/pfncards/internal/config"
	"github.com/hpungsan/pfncards/internal/convert"
	"github.com/hpungsan/pfncards/internal/deck"
	"github.com/hpungsan/pfncards/internal/errors"
)

// appState is filled in by the app's Before hook and shared by all commands.
type appState struct {
	cfg *config.Config
	log *slog.Logger
}

// openDB opens the deck database in the configured data directory.
func (s *appState) openDB() (*sql.DB, error) {
	dir, err := s.cfg.ResolveDataDir()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	db, err := deck.Open(dir)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	s.log.Debug("deck database opened", slog.String("dir", dir))
	return db, nil
}

// newCLIApp creates the CLI application with all commands.
// Running without a subcommand converts the configured input to the configured output.
func newCLIApp(stdout, stderr io.Writer) *cli.App {
	state := &appState{}

	app := &cli.App{
		Name:      "pfncards",
		Usage:     "Convert easy/hard word lists into JSON card decks",
		Version:   Version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Config file (JSON)", EnvVars: []string{config.EnvConfigPath}},
			&cli.BoolFlag{Name: "verbose", Usage: "Enable debug logging"},
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			level, _ := config.ParseLevel(cfg.LogLevel)
			if c.Bool("verbose") {
				level = slog.LevelDebug
			}
			state.cfg = cfg
			state.log = slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))
			return nil
		},
		Action: func(c *cli.Context) error {
			if c.NArg() > 0 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("unknown command %q", c.Args().First())))
			}
			return runParse(c, state, state.cfg.InputPath, state.cfg.OutputPath, state.cfg.PreviewCount)
		},
		Commands: []*cli.Command{
			parseCmd(state),
			checkCmd(state),
			importCmd(state),
			decksCmd(state),
			sampleCmd(state),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// parseCmd creates the parse command.
func parseCmd(state *appState) *cli.Command {
	return &cli.Command{
		Name:  "parse",
		Usage: "Convert a word list into a JSON array of cards",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "Source text file (default from config: raw.txt)"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Destination JSON file (default from config: pfn_cards.json)"},
			&cli.IntFlag{Name: "preview", Aliases: []string{"p"}, Usage: "Number of cards to preview (default from config: 5)"},
		},
		Action: func(c *cli.Context) error {
			input := state.cfg.InputPath
			if c.IsSet("input") {
				input = c.String("input")
			}
			output := state.cfg.OutputPath
			if c.IsSet("output") {
				output = c.String("output")
			}
			preview := state.cfg.PreviewCount
			if c.IsSet("preview") {
				preview = c.Int("preview")
				if preview < 0 {
					return outputError(errors.NewInvalidRequest("preview must be non-negative"))
				}
			}
			return runParse(c, state, input, output, preview)
		},
	}
}

// runParse converts input to output and prints the summary.
func runParse(c *cli.Context, state *appState, input, output string, preview int) error {
	out, err := convert.Convert(c.Context, state.log, convert.ConvertInput{
		Source:      input,
		Destination: output,
		OnIssue:     func(issue convert.LineIssue) { convert.WriteIssue(c.App.ErrWriter, issue) },
	})
	if err != nil {
		return outputError(err)
	}
	convert.WriteSummary(c.App.Writer, out, preview)
	return nil
}

// checkCmd creates the check command.
func checkCmd(state *appState) *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Validate a word list without writing output (fails on malformed lines)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "Source text file (default from config: raw.txt)"},
		},
		Action: func(c *cli.Context) error {
			input := state.cfg.InputPath
			if c.IsSet("input") {
				input = c.String("input")
			}

			out, err := convert.Check(c.Context, state.log, convert.CheckInput{
				Source:  input,
				OnIssue: func(issue convert.LineIssue) { convert.WriteIssue(c.App.ErrWriter, issue) },
			})
			if err != nil {
				return outputError(err)
			}

			if err := outputJSON(c.App.Writer, out); err != nil {
				return outputError(errors.NewInternal(err))
			}
			if len(out.Issues) > 0 {
				return outputError(errors.NewMalformedLines(out.Source, convert.IssueLines(out.Issues)))
			}
			return nil
		},
	}
}

// importCmd creates the import command.
func importCmd(state *appState) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Store a converted JSON deck in the deck database",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "JSON card file (default from config: pfn_cards.json)"},
			&cli.StringFlag{Name: "deck", Aliases: []string{"d"}, Required: true, Usage: "Deck name"},
			&cli.BoolFlag{Name: "replace", Usage: "Replace an existing deck with the same name"},
		},
		Action: func(c *cli.Context) error {
			input := state.cfg.OutputPath
			if c.IsSet("input") {
				input = c.String("input")
			}

			cards, err := convert.LoadCards(input)
			if err != nil {
				return outputError(err)
			}

			db, err := state.openDB()
			if err != nil {
				return outputError(err)
			}
			defer db.Close()

			out, err := deck.Import(c.Context, db, deck.ImportInput{
				Name:    c.String("deck"),
				Cards:   cards,
				Replace: c.Bool("replace"),
			})
			if err != nil {
				return outputError(err)
			}
			state.log.Info("deck imported", slog.String("deck", out.Name), slog.Int("cards", out.Count))

			return outputJSON(c.App.Writer, out)
		},
	}
}

// decksCmd creates the decks command.
func decksCmd(state *appState) *cli.Command {
	return &cli.Command{
		Name:  "decks",
		Usage: "List stored decks",
		Action: func(c *cli.Context) error {
			db, err := state.openDB()
			if err != nil {
				return outputError(err)
			}
			defer db.Close()

			decks, err := deck.List(c.Context, db)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, decks)
		},
	}
}

// sampleCmd creates the sample command.
func sampleCmd(state *appState) *cli.Command {
	return &cli.Command{
		Name:  "sample",
		Usage: "Draw random cards from a stored deck",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "deck", Aliases: []string{"d"}, Required: true, Usage: "Deck name"},
			&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Usage: "Number of cards (default from config: 20)"},
		},
		Action: func(c *cli.Context) error {
			count := state.cfg.SampleSize
			if c.IsSet("count") {
				count = c.Int("count")
			}

			db, err := state.openDB()
			if err != nil {
				return outputError(err)
			}
			defer db.Close()

			cards, err := deck.Sample(c.Context, db, c.String("deck"), count)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, cards)
		},
	}
}

// outputJSON marshals result to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if cErr, ok := err.(*errors.CardsError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", cErr.Code, cErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
