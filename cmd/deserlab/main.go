// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// deserlab is the operator front end for the policy-gated
// deserialization engine. It produces signed sample envelopes, encodes
// user records and generic values, decodes envelopes under the
// sandboxed or strict policy, and prints CBOR diagnostics without
// materializing anything.
//
// Configuration comes from --config or DESERLAB_CONFIG. Without
// either, development defaults apply (engine enabled, built-in signing
// secret) and a warning is logged.
//
// The trigger ledger lives in process memory, so status and decode
// results only reflect the gadgets materialized by this invocation.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/deserlab/lib/process"
	"github.com/bureau-foundation/deserlab/lib/version"
)

func main() {
	process.Exit(run(os.Args[1:], streams{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}))
}

// streams are the standard file handles a command reads and writes.
type streams struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// command is one deserlab subcommand.
type command struct {
	name    string
	summary string
	run     func(env *environment, args []string) error
}

var commands = []command{
	{"samples", "print a signed benign sample and a signed gadget sample", runSamples},
	{"encode", "sign a UserRecord described by a JSON request", runEncode},
	{"encode-value", "sign a JSON string, integer, or array as a value", runEncodeValue},
	{"decode", "decode an envelope under the sandboxed or strict policy", runDecode},
	{"inspect", "print the CBOR diagnostic notation of an envelope payload", runInspect},
	{"status", "print whether the engine is enabled and the trigger count", runStatus},
	{"keygen", "generate an age identity for sealing the signing secret", runKeygen},
	{"seal", "encrypt a signing secret for lab.hmac_secret_sealed", runSeal},
}

func lookupCommand(name string) (command, bool) {
	for _, candidate := range commands {
		if candidate.name == name {
			return candidate, true
		}
	}
	return command{}, false
}

func run(args []string, std streams) error {
	var configPath string
	var showVersion bool

	flagSet := pflag.NewFlagSet("deserlab", pflag.ContinueOnError)
	flagSet.SetOutput(std.stderr)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&configPath, "config", "", "path to deserlab.yaml (default: $DESERLAB_CONFIG)")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(std.stderr, flagSet)
			return nil
		}
		return err
	}
	if showVersion {
		version.Fprint(std.stdout, "deserlab")
		return nil
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(std.stderr, flagSet)
		return nil
	}

	remaining := flagSet.Args()
	if len(remaining) == 0 {
		printHelp(std.stderr, flagSet)
		return errors.New("no command given")
	}
	selected, ok := lookupCommand(remaining[0])
	if !ok {
		return fmt.Errorf("unknown command %q (known: %s)", remaining[0], commandNames())
	}

	env := &environment{streams: std, configPath: configPath}
	defer env.Close()
	return selected.run(env, remaining[1:])
}

func commandNames() string {
	names := make([]string, 0, len(commands))
	for _, entry := range commands {
		names = append(names, entry.name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func printHelp(writer io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(writer, `deserlab: sign, inspect, and decode CBOR envelopes under an allow-list policy.

Usage:
  deserlab [--config PATH] <command> [flags]

Commands:
`)
	for _, entry := range commands {
		fmt.Fprintf(writer, "  %-13s %s\n", entry.name, entry.summary)
	}
	fmt.Fprintf(writer, `
Examples:
  # Produce the two demonstration envelopes
  deserlab samples

  # Decode the gadget sample: sandboxed records a trigger, strict rejects it
  deserlab decode --mode sandboxed --input bad.jsonc
  deserlab decode --mode strict --expect UserRecord --input bad.jsonc

  # Look at a payload without decoding it
  deserlab inspect --input envelope.json

Run "deserlab <command> --help" for command flags.

Flags:
`)
	flagSet.SetOutput(writer)
	flagSet.PrintDefaults()
}

// exitError ends the process with code after the command has already
// written its own output.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit code %d", e.code) }

func (e *exitError) ExitCode() int { return e.code }

// newFlagSet returns a subcommand flag set that reports errors to
// stderr.
func (env *environment) newFlagSet(name string) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("deserlab "+name, pflag.ContinueOnError)
	flagSet.SetOutput(env.stderr)
	return flagSet
}

// parseFlags parses args into flagSet. It returns done when --help was
// requested and the usage has been printed.
func (env *environment) parseFlags(flagSet *pflag.FlagSet, usage string, args []string) (done bool, err error) {
	flagSet.Usage = func() {
		fmt.Fprintf(env.stderr, "Usage:\n  %s\n\nFlags:\n", usage)
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return true, nil
		}
		return false, err
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return false, fmt.Errorf("unexpected argument: %s", extra[0])
	}
	return false, nil
}
