package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/goose-lang/loopcapture/capture"
	"github.com/goose-lang/loopcapture/scenario"
	"github.com/goose-lang/loopcapture/transcript"
)

type options struct {
	configPath string
	mode       string
	verbose    bool
	outPath    string
	patterns   []string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("capturedemo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: capturedemo [options] [scenario patterns]")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.configPath, "config", "",
		"toml file of scenarios (default runs [1, 2, 2])")
	fs.StringVar(&opts.mode, "mode", "",
		"override every scenario's capture mode (shared, per-iteration, snapshot)")
	fs.BoolVar(&opts.verbose, "v", false,
		"print a header for each scenario to stderr")
	fs.StringVar(&opts.outPath, "out", "",
		"also write the output to this file, if it changed")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.patterns = fs.Args()
	return opts, nil
}

func loadConfig(opts options) (scenario.Config, error) {
	if opts.configPath == "" {
		return scenario.Default(), nil
	}
	if _, err := os.Stat(opts.configPath); err != nil {
		return scenario.Config{}, errors.Wrap(err, "could not open scenario file")
	}
	return scenario.ReadConfig(opts.configPath)
}

func run(opts options, stdout, stderr io.Writer) error {
	bold := color.New(color.Bold).SprintFunc()
	c, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if opts.mode != "" {
		if _, err := capture.ParseMode(opts.mode); err != nil {
			return err
		}
	}
	selected := c.Select(opts.patterns)
	if len(selected) == 0 {
		return errors.Wrapf(scenario.ErrNoScenarios, "patterns %v matched", opts.patterns)
	}

	var out bytes.Buffer
	w := io.MultiWriter(stdout, &out)
	for _, s := range selected {
		if opts.mode != "" {
			s.Mode = opts.mode
		}
		if opts.verbose {
			mode, _ := capture.ParseMode(s.Mode)
			fmt.Fprintf(stderr, "%s %v (%s)\n", bold(s.Name), s.Inputs, mode)
		}
		if err := c.Run(w, s); err != nil {
			return err
		}
	}
	if opts.outPath != "" {
		if err := transcript.WriteFileIfChanged(opts.outPath, out.Bytes(), 0666); err != nil {
			return errors.Wrap(err, "could not write output")
		}
	}
	return nil
}

func main() {
	red := color.New(color.FgRed).SprintFunc()
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	} else if err != nil {
		os.Exit(2)
	}
	if err := run(opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		os.Exit(1)
	}
}
