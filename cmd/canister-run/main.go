// canister-run executes a compiled canister against the local emulator.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/reglet-dev/canister-sdk/go/config"
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "canister-run",
		Short: "Run canister methods against a local emulator",
		Long: `canister-run loads a canister compiled to WASM, runs canister_init with the
given configuration, then invokes one method and prints the outcome.`,
		Version: fmt.Sprintf("%s (%s)", Version, Commit),
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	var opts runOptions

	addRunFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&opts.configPath, "config", "", "YAML or JSON runtime config passed to canister_init")
		cmd.Flags().StringVar(&opts.arg, "arg", "", "Argument bytes, as text")
		cmd.Flags().StringVar(&opts.hexArg, "hex-arg", "", "Argument bytes, hex encoded")
		cmd.Flags().StringVar(&opts.caller, "caller", "2vxsx-fae", "Caller principal in textual form")
		cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "Emulator log level (debug, info, warn, error)")
		cmd.Flags().BoolVar(&opts.showDebug, "show-debug", false, "Print the canister's debug_print output")
		cmd.MarkFlagsMutuallyExclusive("arg", "hex-arg")
	}

	var queryCmd = &cobra.Command{
		Use:   "query <module.wasm> <method>",
		Short: "Run a query method",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMethod(cmd.Context(), cmd.OutOrStdout(), "query", args[0], args[1], opts)
		},
	}
	addRunFlags(queryCmd)

	var updateCmd = &cobra.Command{
		Use:   "update <module.wasm> <method>",
		Short: "Run an update method",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMethod(cmd.Context(), cmd.OutOrStdout(), "update", args[0], args[1], opts)
		},
	}
	addRunFlags(updateCmd)

	var methodsCmd = &cobra.Command{
		Use:   "methods <module.wasm>",
		Short: "List the methods a module exports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listMethods(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}

	var schemaCmd = &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the runtime configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := config.Schema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(schema))
			return err
		},
	}

	rootCmd.AddCommand(queryCmd, updateCmd, methodsCmd, schemaCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("canister-run failed", "error", err)
		os.Exit(1)
	}
}
