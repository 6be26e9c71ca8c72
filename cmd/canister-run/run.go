package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/reglet-dev/canister-sdk/go/config"
	"github.com/reglet-dev/canister-sdk/go/domain/entities"
	"github.com/reglet-dev/canister-sdk/go/host"
	"github.com/reglet-dev/canister-sdk/go/testing/ictest"
)

type runOptions struct {
	configPath string
	arg        string
	hexArg     string
	caller     string
	logLevel   string
	showDebug  bool
}

// argBytes decodes the method argument from the flags.
func (o runOptions) argBytes() ([]byte, error) {
	if o.hexArg != "" {
		b, err := hex.DecodeString(o.hexArg)
		if err != nil {
			return nil, fmt.Errorf("invalid --hex-arg: %w", err)
		}
		return b, nil
	}
	return []byte(o.arg), nil
}

// initArg reads and validates the config file. The raw document is what
// canister_init receives.
func (o runOptions) initArg() ([]byte, error) {
	if o.configPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(o.configPath)
	if err != nil {
		return nil, err
	}
	if _, err := config.Parse(data); err != nil {
		return nil, fmt.Errorf("config %s: %w", o.configPath, err)
	}
	return data, nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func runMethod(ctx context.Context, out io.Writer, kind, path, method string, o runOptions) error {
	arg, err := o.argBytes()
	if err != nil {
		return err
	}
	caller, err := entities.ParsePrincipal(o.caller)
	if err != nil {
		return fmt.Errorf("invalid --caller: %w", err)
	}
	initArg, err := o.initArg()
	if err != nil {
		return err
	}
	wasmBytes, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	exec, err := host.NewExecutor(ctx, host.WithLogger(newLogger(o.logLevel)))
	if err != nil {
		return err
	}
	defer func() { _ = exec.Close(ctx) }()

	inst, err := exec.Load(ctx, wasmBytes)
	if err != nil {
		return err
	}
	if resp := inst.Init(ctx, initArg); resp.Trapped {
		return fmt.Errorf("canister_init trapped: %s", resp.TrapMessage)
	}

	var resp ictest.Response
	if kind == "query" {
		resp, err = inst.Query(ctx, method, arg, caller)
	} else {
		resp, err = inst.Update(ctx, method, arg, caller)
	}
	if err != nil {
		return err
	}

	if o.showDebug {
		for _, line := range exec.Replica().DebugOutput() {
			fmt.Fprintf(out, "debug: %s\n", line)
		}
	}
	return printResponse(out, resp, exec.Replica().Calls())
}

func printResponse(out io.Writer, resp ictest.Response, calls []*ictest.PendingCall) error {
	var err error
	switch {
	case resp.Trapped:
		_, err = fmt.Fprintf(out, "trapped: %s\n", resp.TrapMessage)
	case resp.Rejected:
		_, err = fmt.Fprintf(out, "rejected: %s\n", resp.RejectMessage)
	case resp.Replied:
		_, err = fmt.Fprintf(out, "reply: %s\n", formatBytes(resp.Reply))
	default:
		_, err = fmt.Fprintln(out, "no response")
	}
	if err != nil {
		return err
	}
	for _, c := range calls {
		if _, err := fmt.Fprintf(out, "call #%d: %s.%s payload=%s cycles=%s\n",
			c.ID, c.Callee, c.Method, formatBytes(c.Payload), c.Cycles); err != nil {
			return err
		}
	}
	return nil
}

// formatBytes prints b as a quoted string when it is printable UTF-8,
// otherwise as hex.
func formatBytes(b []byte) string {
	if utf8.Valid(b) {
		printable := true
		for _, r := range string(b) {
			if r < 0x20 && r != '\n' && r != '\t' {
				printable = false
				break
			}
		}
		if printable {
			return fmt.Sprintf("%q", b)
		}
	}
	return "0x" + hex.EncodeToString(b)
}

func listMethods(ctx context.Context, out io.Writer, path string) error {
	wasmBytes, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	exec, err := host.NewExecutor(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = exec.Close(ctx) }()

	inst, err := exec.Load(ctx, wasmBytes)
	if err != nil {
		return err
	}
	for _, m := range inst.Methods() {
		if _, err := fmt.Fprintln(out, m); err != nil {
			return err
		}
	}
	return nil
}
