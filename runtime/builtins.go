package runtime

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/sergev/minion/lang"
)

// clearScreen erases the terminal and homes the cursor.
const clearScreen = "\x1B[2J\x1B[1;1H"

func builtinTable() map[string]lang.Builtin {
	return map[string]lang.Builtin{
		"print":   builtinPrint,
		"println": builtinPrintln,
		"input":   builtinInput,
		"clear":   builtinClear,
		"len":     builtinLen,
		"type":    builtinType,
	}
}

func arityError(name string, want string, got int) error {
	return fmt.Errorf("%w: %s expects %s, got %d", lang.ErrArity, name, want, got)
}

// builtinPrint writes the display form of every argument with no separator.
func builtinPrint(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	var sb strings.Builder
	for _, arg := range args {
		sb.WriteString(arg.String())
	}
	if _, err := io.WriteString(ev.Stdout(), sb.String()); err != nil {
		return lang.Value{}, err
	}
	return lang.Null, nil
}

// builtinPrintln writes each argument on its own line.
func builtinPrintln(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	if len(args) == 0 {
		_, err := io.WriteString(ev.Stdout(), "\n")
		return lang.Null, err
	}
	var sb strings.Builder
	for _, arg := range args {
		sb.WriteString(arg.String())
		sb.WriteByte('\n')
	}
	if _, err := io.WriteString(ev.Stdout(), sb.String()); err != nil {
		return lang.Value{}, err
	}
	return lang.Null, nil
}

// builtinInput reads one line, printing the optional prompt first.
// End of input yields null; other read failures yield an error object.
func builtinInput(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	if len(args) > 1 {
		return lang.Value{}, arityError("input", "at most 1 argument", len(args))
	}
	if len(args) == 1 {
		if _, err := io.WriteString(ev.Stdout(), args[0].String()); err != nil {
			return lang.Value{}, err
		}
	}
	line, err := ev.Stdin().ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return lang.ErrorValue(err.Error()), nil
		}
		if line == "" {
			return lang.Null, nil
		}
	}
	return lang.StringValue(strings.TrimRight(line, " \t\r\n")), nil
}

func builtinClear(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	if len(args) != 0 {
		return lang.Value{}, arityError("clear", "no arguments", len(args))
	}
	if _, err := io.WriteString(ev.Stdout(), clearScreen); err != nil {
		return lang.Value{}, err
	}
	return lang.Null, nil
}

// builtinLen returns the number of characters in a string.
func builtinLen(_ *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	if len(args) != 1 {
		return lang.Value{}, arityError("len", "1 argument", len(args))
	}
	if args[0].Type != lang.TypeString {
		return lang.Value{}, fmt.Errorf("%w: len expects string, got %s", lang.ErrTypeMismatch, args[0].TypeName())
	}
	return lang.IntValue(int64(utf8.RuneCountInString(args[0].Str()))), nil
}

func builtinType(_ *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	if len(args) != 1 {
		return lang.Value{}, arityError("type", "1 argument", len(args))
	}
	return lang.StringValue(args[0].TypeName()), nil
}
