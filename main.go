package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/sergev/minion/lang"
	"github.com/sergev/minion/parser"
	"github.com/sergev/minion/runtime"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("minion", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "usage: minion [flags] [script.mn | -]\n")
		flags.PrintDefaults()
	}
	configPath := flags.String("config", "", "path to YAML config `file` (default ~/.minion.yaml)")
	verbose := flags.Bool("v", false, "trace function calls at debug level")
	maxDepth := flags.Int("max-depth", lang.DefaultMaxDepth, "maximum nested function calls, 0 for no limit")
	showVersion := flags.Bool("version", false, "print version and exit")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *showVersion {
		fmt.Fprintf(stdout, "minion %s\n", version)
		return 0
	}

	path, explicit := *configPath, *configPath != ""
	if !explicit {
		path = defaultConfigPath()
	}
	cfg, err := loadConfig(path, explicit)
	if err != nil {
		fmt.Fprintf(stderr, "minion: config: %v\n", err)
		return 1
	}
	flags.Visit(func(f *flag.Flag) {
		if f.Name == "max-depth" {
			cfg.MaxDepth = *maxDepth
		}
	})
	if cfg.MaxDepth < 0 {
		fmt.Fprintf(stderr, "minion: -max-depth must not be negative\n")
		return 2
	}

	level, _ := cfg.level()
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ev := runtime.NewEvaluator(
		lang.WithStdout(stdout),
		lang.WithStdin(stdin),
		lang.WithMaxDepth(cfg.MaxDepth),
		lang.WithLogger(logger),
	)

	if rest := flags.Args(); len(rest) > 0 {
		script := rest[0]
		logger.Debug("run script", slog.String("path", script), slog.Int("max-depth", cfg.MaxDepth))
		if script == "-" {
			_, err = runtime.EvaluateReader(ev, ev.Stdin())
		} else {
			_, err = runtime.EvaluateFile(ev, script)
		}
		if err != nil {
			fmt.Fprintf(stderr, "minion: %v\n", err)
			return 1
		}
		return 0
	}

	if !isInteractive(stdin) {
		runBufferedREPL(newSession(ev, stdout, stderr), ev.Stdin())
		return 0
	}
	runInteractiveREPL(newSession(ev, stdout, stderr), cfg)
	return 0
}

// session accumulates REPL lines until they form a complete program.
type session struct {
	ev     *lang.Evaluator
	out    io.Writer
	errOut io.Writer
	buffer strings.Builder
}

func newSession(ev *lang.Evaluator, out, errOut io.Writer) *session {
	return &session{ev: ev, out: out, errOut: errOut}
}

func (s *session) pending() bool {
	return s.buffer.Len() > 0
}

func (s *session) reset() {
	s.buffer.Reset()
}

// feed appends a line and evaluates the buffer once it parses. It reports
// whether the buffer was consumed. At end of input an incomplete buffer is
// reported as a parse error instead of waiting for more lines.
func (s *session) feed(line string, eof bool) (src string, done bool) {
	s.buffer.WriteString(line)
	src = s.buffer.String()
	prog, err := parser.Parse(src)
	if err != nil {
		if parser.IsIncomplete(err) && !eof {
			return src, false
		}
		fmt.Fprintf(s.errOut, "parse error: %v\n", err)
		s.buffer.Reset()
		return src, true
	}
	s.buffer.Reset()
	val, err := s.ev.Eval(prog, nil)
	if err != nil {
		fmt.Fprintf(s.errOut, "error: %v\n", err)
		return src, true
	}
	if !val.IsNull() {
		fmt.Fprintln(s.out, val.String())
	}
	return src, true
}

func runBufferedREPL(s *session, reader *bufio.Reader) {
	for {
		line, err := reader.ReadString('\n')
		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			fmt.Fprintf(s.errOut, "read error: %v\n", err)
			return
		}
		if line != "" || (eof && s.pending()) {
			s.feed(line, eof)
		}
		if eof {
			return
		}
	}
}

func runInteractiveREPL(s *session, cfg Config) {
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	if historyPath := cfg.historyPath(); historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			state.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				state.WriteHistory(f)
				f.Close()
			}
		}()
	}

	for {
		prompt := cfg.Prompt
		if s.pending() {
			prompt = cfg.ContinuationPrompt
		}
		input, err := state.Prompt(prompt)
		if err != nil {
			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				fmt.Fprintln(s.out)
				s.reset()
				continue
			case errors.Is(err, io.EOF):
				fmt.Fprintln(s.out)
				return
			default:
				fmt.Fprintf(s.errOut, "read error: %v\n", err)
				return
			}
		}
		src, done := s.feed(input+"\n", false)
		if done {
			if trimmed := strings.TrimSpace(src); trimmed != "" {
				state.AppendHistory(trimmed)
			}
		}
	}
}

func isInteractive(stdin io.Reader) bool {
	f, ok := stdin.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
