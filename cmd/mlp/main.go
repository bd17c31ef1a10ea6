// Command mlp creates, trains, inspects, exports and imports BMLP weight files.
//
// Usage:
//
//	mlp [--loglevel=info] [--logfile=path] [--nocolor] <command> [options]
//
// Network shapes come from TOML topology files:
//
//	inputs = 2
//
//	[[layers]]
//	neurons = 4
//	activation = "tanh"
//
//	[[layers]]
//	neurons = 1
//	activation = "sigmoid"
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/mlp/internal/log"
	"github.com/born-ml/mlp/internal/serialization"
	"github.com/jessevdk/go-flags"
)

const version = "v0.1.0-dev"

// Exit codes.
const (
	exitOK = iota
	exitFailure
	exitUsage
	exitIO
	exitTruncated
	exitMismatch
	exitFormat
	exitRange
	exitCorrupt
)

// app is the state shared by all commands.
type app struct {
	opts   globalOptions
	log    *log.Logger
	stdout io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout}
	defer func() {
		if a.log != nil {
			_ = a.log.Close()
		}
	}()

	parser := newParser(a)
	if _, err := parser.ParseArgs(args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) {
			if ferr.Type == flags.ErrHelp {
				fmt.Fprintln(stdout, err)
				return exitOK
			}
			fmt.Fprintln(stderr, err)
			return exitUsage
		}
		if a.log != nil {
			a.log.Error("Command failed", "err", err)
		} else {
			fmt.Fprintln(stderr, err)
		}
		return exitCode(err)
	}
	return exitOK
}

func newParser(a *app) *flags.Parser {
	parser := flags.NewParser(&a.opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "mlp"
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		if cmd == nil {
			return nil
		}
		l, err := log.New(log.Config{
			Level:   a.opts.LogLevel,
			LogFile: a.opts.LogFile,
			NoColor: a.opts.NoColor,
		})
		if err != nil {
			return err
		}
		a.log = l
		return cmd.Execute(args)
	}

	mustAdd := func(name, short, long string, cmd flags.Commander) {
		if _, err := parser.AddCommand(name, short, long, cmd); err != nil {
			panic(err)
		}
	}
	mustAdd("init", "Create a weight file with fresh weights",
		"Builds the network described by a topology file, fills it with Xavier-initialized weights and saves it.",
		&initCommand{app: a})
	mustAdd("inspect", "Describe a weight file",
		"Reads layer, neuron and weight counts from a weight file without a topology.",
		&inspectCommand{app: a})
	mustAdd("verify", "Check that a weight file loads into a topology",
		"Loads a weight file into the network described by a topology file. Exits non-zero with a code per error kind.",
		&verifyCommand{app: a})
	mustAdd("train", "Train a network on CSV data",
		"Trains with SGD or Adam on the mean squared error and saves the result.",
		&trainCommand{app: a})
	mustAdd("predict", "Run a network on input vectors",
		"Each argument is a comma-separated input vector; one output vector is printed per argument.",
		&predictCommand{app: a})
	mustAdd("export", "Export a weight file as SafeTensors",
		"Writes one F64 weight and bias tensor per layer.",
		&exportCommand{app: a})
	mustAdd("import", "Convert a SafeTensors file to a weight file",
		"Reads one weight and bias tensor per layer, F64 or F32, and saves them as a weight file.",
		&importCommand{app: a})
	mustAdd("version", "Show version", "Prints the mlp version.", &versionCommand{app: a})
	return parser
}

// exitCode maps an error to a process exit status by serialization kind.
func exitCode(err error) int {
	var serr *serialization.Error
	if !errors.As(err, &serr) {
		if errors.Is(err, serialization.ErrStructureMismatch) {
			return exitMismatch
		}
		return exitFailure
	}
	switch serr.Kind {
	case serialization.KindIO:
		return exitIO
	case serialization.KindTruncated:
		return exitTruncated
	case serialization.KindMismatch:
		return exitMismatch
	case serialization.KindFormat:
		return exitFormat
	case serialization.KindRange:
		return exitRange
	case serialization.KindCorrupt:
		return exitCorrupt
	default:
		return exitFailure
	}
}
