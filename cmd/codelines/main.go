// Command codelines renders annotated code blocks from the command line.
//
// Usage:
//
//	codelines render [file] [-o output] [--format html|docx|text]
//	codelines markdown [file] [-o output] [--page]
//	codelines inspect [file]
//	codelines css [--style name]
//
// If no input file is given, input is read from standard input. If no
// output is given, output is written to standard output.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgallion1/codelines/internal/codeblock"
	"github.com/dgallion1/codelines/internal/config"
	"github.com/dgallion1/codelines/internal/highlight"
	"github.com/dgallion1/codelines/internal/render"
	"github.com/spf13/cobra"
)

// app holds the flags shared by every command.
type app struct {
	style       string
	annotations string
	rules       string
	verbose     bool
	output      string

	log      *slog.Logger
	renderer *render.Renderer
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "codelines",
		Short: "render annotated code blocks",
		Long: `codelines highlights code, extracts [!name args] directives from its
comments, checks section markers and renders the result as HTML, DOCX or
plain text.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.style, "style", highlight.DefaultStyle, "chroma style used for colours")
	pf.StringVar(&a.annotations, "annotations", string(codeblock.ModeStrip), "annotation mode: strip, retain or ignore")
	pf.StringVar(&a.rules, "rules", "", "YAML file of redaction rules")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log to stderr")

	rootCmd.AddCommand(a.renderCmd(), a.markdownCmd(), a.inspectCmd(), a.cssCmd())
	return rootCmd
}

func (a *app) setup(stderr io.Writer) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	mode, err := codeblock.ParseAnnotationMode(a.annotations)
	if err != nil {
		return err
	}
	var rules []codeblock.RedactionRule
	if a.rules != "" {
		rules, err = config.LoadRules(a.rules)
		if err != nil {
			return err
		}
		a.log.Debug("loaded redaction rules", "path", a.rules, "count", len(rules))
	}

	a.renderer = render.New(highlight.New(a.style), codeblock.Options{
		Annotations: mode,
		Redactions:  rules,
	})
	return nil
}

// input opens the named file, or the command's stdin when no file is given.
func input(cmd *cobra.Command, args []string) (io.ReadCloser, string, error) {
	if len(args) == 0 {
		return io.NopCloser(cmd.InOrStdin()), "", nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, "", err
	}
	return f, args[0], nil
}

// write sends out to -o when set, else to the command's stdout.
func (a *app) write(cmd *cobra.Command, fn func(io.Writer) error) (err error) {
	if a.output == "" {
		return fn(cmd.OutOrStdout())
	}
	f, err := os.Create(a.output)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return fn(f)
}

func prefix(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("(%s) %w", name, err)
}
