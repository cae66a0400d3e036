package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/treykane/cli-pdf/internal/app"
	"github.com/treykane/cli-pdf/internal/config"
	"github.com/treykane/cli-pdf/internal/engine"
	"github.com/treykane/cli-pdf/internal/logging"
	"github.com/treykane/cli-pdf/internal/viewer"
)

var log = logging.New("main")

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("cli-pdf", flag.ContinueOnError)
	scale := flags.Float64("scale", 0, "initial zoom level, e.g. 1.5 (default: remembered, then configured)")
	overscan := flags.Int("overscan", 0, "pages kept rendered beyond each edge of the screen")
	initConfig := flags.Bool("init-config", false, "write ~/.cli-pdf/config.json with the current settings and exit")
	flags.Usage = func() {
		fmt.Fprintln(flags.Output(), "usage: cli-pdf [flags] [document.pdf]")
		fmt.Fprintln(flags.Output(), "\nWithout a document the last opened one is reopened.")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	switch {
	case errors.Is(err, config.ErrNotConfigured):
		cfg = config.Default()
	case err != nil:
		return err
	}
	if *initConfig {
		if err := config.Save(cfg); err != nil {
			return err
		}
		path, _ := config.ConfigPath()
		fmt.Println("wrote", path)
		return nil
	}

	arg := flags.Arg(0)
	if arg == "" {
		arg = cfg.LastDocument
	}
	if arg == "" {
		flags.Usage()
		return errors.New("no document given")
	}
	source, err := config.NormalizeDocumentPath(arg)
	if err != nil {
		return err
	}

	cfg.LastDocument = source
	if err := config.Save(cfg); err != nil {
		log.Warn("remember last document", "error", err)
	}
	if *overscan > 0 {
		cfg.Overscan = *overscan
	}

	var statePath string
	if dir, err := config.Dir(); err != nil {
		log.Warn("resolve state dir", "error", err)
	} else {
		statePath = filepath.Join(dir, app.StateFileName)
	}

	m := app.New(cfg, app.Options{
		Source:    source,
		Scale:     *scale,
		Engine:    engine.NewFitz(),
		Measurer:  viewer.NewTerminalMeasurer(app.ChromeRows, cfg.CellWidth, cfg.CellHeight),
		StatePath: statePath,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, runErr := p.Run()
	return errors.Join(runErr, m.Close())
}
