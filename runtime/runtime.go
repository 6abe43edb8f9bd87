package runtime

import (
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/sergev/minion/lang"
	"github.com/sergev/minion/parser"
)

// Builtins returns the process-wide builtin registry.
var Builtins = sync.OnceValue(func() *lang.Registry {
	return lang.NewRegistry(builtinTable())
})

// NewEvaluator constructs an evaluator with the standard builtins installed.
// Later options override earlier ones, so callers may still replace the registry.
func NewEvaluator(opts ...lang.Option) *lang.Evaluator {
	return lang.NewEvaluator(append([]lang.Option{lang.WithBuiltins(Builtins())}, opts...)...)
}

func readFileSkippingShebang(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, []byte("#!")) {
		if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
			return data[idx+1:], nil
		}
		return []byte{}, nil
	}
	return data, nil
}

// EvaluateString parses and evaluates src in the global environment.
func EvaluateString(ev *lang.Evaluator, src string) (lang.Value, error) {
	prog, err := parser.Parse(src)
	if err != nil {
		return lang.Value{}, err
	}
	return ev.Eval(prog, nil)
}

// EvaluateReader consumes all source from the reader and evaluates it.
func EvaluateReader(ev *lang.Evaluator, r io.Reader) (lang.Value, error) {
	prog, err := parser.ParseReader(r)
	if err != nil {
		return lang.Value{}, err
	}
	return ev.Eval(prog, nil)
}

// EvaluateFile loads and executes a script file, allowing a #! first line.
func EvaluateFile(ev *lang.Evaluator, path string) (lang.Value, error) {
	data, err := readFileSkippingShebang(path)
	if err != nil {
		return lang.Value{}, err
	}
	return EvaluateString(ev, string(data))
}
