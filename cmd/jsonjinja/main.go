package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/deicod/jsonjinja/runtime"
	"github.com/deicod/jsonjinja/suggest"
)

const usage = `usage: jsonjinja [flags] <command>

commands:
  list            print the registered template names
  render <name>   render a template against the -context JSON object
  suggest         group the -context JSON array of search hits and render the suggestion box

flags:
`

type options struct {
	configPath  string
	contextPath string
	outPath     string
	logLevel    string
	abbr        string
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "jsonjinja: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options
	fs := flag.NewFlagSet("jsonjinja", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "YAML config file")
	fs.StringVar(&opts.contextPath, "context", "", "JSON context file (stdin when \"-\")")
	fs.StringVar(&opts.outPath, "out", "", "output file, written atomically (stdout when empty)")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&opts.abbr, "abbr", "", "state abbreviation passed to the suggestion layout")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	cfg, err := buildConfig(opts, stderr)
	if err != nil {
		return err
	}
	logger := cfg.Logger()

	switch cmd := fs.Arg(0); cmd {
	case "list":
		for _, name := range cfg.Registry().ListTemplates() {
			fmt.Fprintln(stdout, name)
		}
		return nil

	case "render":
		if fs.NArg() != 2 {
			return errors.New("render needs exactly one template name")
		}
		var vars map[string]interface{}
		if err := readJSON(opts.contextPath, stdin, &vars); err != nil {
			return err
		}
		name := fs.Arg(1)
		tmpl, err := cfg.GetTemplate(name)
		if err != nil {
			return err
		}
		logger.Debug("rendering", "template", name, "out", opts.outPath)
		if opts.outPath != "" {
			return tmpl.RenderToFile(opts.outPath, vars)
		}
		return tmpl.RenderTo(stdout, vars)

	case "suggest":
		var hits []map[string]interface{}
		if err := readJSON(opts.contextPath, stdin, &hits); err != nil {
			return err
		}
		out, err := suggest.Render(cfg, suggest.GroupResults(hits), opts.abbr)
		if err != nil {
			return err
		}
		logger.Debug("rendered suggestions", "hits", len(hits), "out", opts.outPath)
		return writeOutput(opts.outPath, out, stdout)

	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// buildConfig applies the optional YAML file and registers the suggestion
// templates. A -log-level flag overrides the file's log_level.
func buildConfig(opts options, stderr io.Writer) (*runtime.Config, error) {
	b := runtime.NewConfigBuilder()

	levelName := opts.logLevel
	if opts.configPath != "" {
		fc, err := runtime.LoadFileConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		b.ApplyFile(fc)
		if levelName == "" {
			levelName = fc.LogLevel
		}
	}

	level, err := runtime.ParseLogLevel(levelName)
	if err != nil {
		return nil, err
	}
	b.WithLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	return suggest.Register(b).Build()
}

// readJSON decodes path into v. An empty path leaves v unset; "-" reads stdin.
func readJSON(path string, stdin io.Reader, v interface{}) error {
	if path == "" {
		return nil
	}

	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open context: %w", err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode context %s: %w", path, err)
	}
	return nil
}

func writeOutput(path, content string, stdout io.Writer) error {
	if path == "" {
		_, err := io.WriteString(stdout, content)
		return err
	}
	if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
