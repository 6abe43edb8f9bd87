package runtime

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sergev/minion/lang"
	"github.com/sergev/minion/parser"
)

func TestReadFileSkippingShebang(t *testing.T) {
	dir := t.TempDir()

	withShebang := filepath.Join(dir, "script.mn")
	if err := os.WriteFile(withShebang, []byte("#!/usr/bin/env minion\n1 + 2\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	data, err := readFileSkippingShebang(withShebang)
	if err != nil {
		t.Fatalf("readFileSkippingShebang error: %v", err)
	}
	if string(data) != "1 + 2\n" {
		t.Fatalf("expected shebang to be stripped, got %q", data)
	}

	onlyShebang := filepath.Join(dir, "only_shebang.mn")
	if err := os.WriteFile(onlyShebang, []byte("#!/bin/true"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	data, err = readFileSkippingShebang(onlyShebang)
	if err != nil {
		t.Fatalf("readFileSkippingShebang error: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected empty body for shebang-only script, got %q", data)
	}

	// A leading '#' without '!' is a variable declaration and must survive.
	declaration := filepath.Join(dir, "plain.mn")
	if err := os.WriteFile(declaration, []byte("# x = 1;"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	data, err = readFileSkippingShebang(declaration)
	if err != nil {
		t.Fatalf("readFileSkippingShebang error: %v", err)
	}
	if string(data) != "# x = 1;" {
		t.Fatalf("expected content unchanged, got %q", data)
	}
}

func TestEvaluateFile(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "prog.mn")
	src := `#!/usr/bin/env minion
fn inc(n) {
	ret n + 1;
}
inc(41);
`
	if err := os.WriteFile(script, []byte(src), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}

	ev := NewEvaluator()
	val, err := EvaluateFile(ev, script)
	if err != nil {
		t.Fatalf("EvaluateFile error: %v", err)
	}
	if val.Type != lang.TypeInt || val.Int() != 42 {
		t.Fatalf("expected 42, got %v", val)
	}

	if _, err := EvaluateFile(ev, filepath.Join(dir, "missing.mn")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestEvaluateReaderAndString(t *testing.T) {
	ev := NewEvaluator()
	if _, err := EvaluateReader(ev, strings.NewReader("# base = 40;")); err != nil {
		t.Fatalf("EvaluateReader error: %v", err)
	}
	val, err := EvaluateString(ev, "base + 2")
	if err != nil {
		t.Fatalf("EvaluateString error: %v", err)
	}
	if val.Int() != 42 {
		t.Fatalf("bindings should persist across evaluations, got %v", val)
	}

	_, err = EvaluateString(ev, "# = 1;")
	var list parser.ErrorList
	if !errors.As(err, &list) || len(list) != 1 {
		t.Fatalf("expected a single parse error, got %v", err)
	}
}
