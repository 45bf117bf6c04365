package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	yuerrors "github.com/nanw1103/yumako/internal/errors"
	"github.com/nanw1103/yumako/internal/output"
	"github.com/nanw1103/yumako/internal/state"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	stateFile       string
	stateGetDefault string
	stateSetJSON    bool
	stateForce      bool
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Remember values between runs",
	Long: `Keep small values in a persistent state file: cursors, last-seen
timestamps, counters. Values live in a single JSON document that is
rewritten on every change.

The file defaults to ./.state and can be moved with --file, the
state_file config key, or YUMAKO_STATE_FILE.

Examples:
  # Remember where a sync left off
  yumako state set cursor 12345

  # Read it back (exit code 1 if unset and no --default)
  yumako state get cursor
  yumako state get cursor --default 0

  # Structured values
  yumako state set window '{"from": 10, "to": 20}' --json

  # Housekeeping
  yumako state list
  yumako state unset cursor
  yumako state delete --force`,
}

var stateGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a stored value",
	Long: `Print the value stored under a key.

Strings print raw; other values print as JSON. A missing key is an
error unless --default supplies a fallback.

Examples:
  yumako state get cursor
  yumako state get cursor --default 0`,
	Args:              cobra.ExactArgs(1),
	RunE:              runStateGet,
	ValidArgsFunction: completeStateKeys,
}

var stateSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a value",
	Long: `Store a value under a key and persist the state file.

The value is stored as a string unless --json is given, in which case
it is parsed first, so numbers, booleans, arrays and objects keep
their type.

Examples:
  yumako state set cursor 12345
  yumako state set retries 3 --json
  yumako state set window '{"from": 10, "to": 20}' --json`,
	Args: cobra.ExactArgs(2),
	RunE: runStateSet,
}

var stateUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a stored value",
	Long: `Remove a key from the state file. Removing an absent key is not
an error.

Examples:
  yumako state unset cursor`,
	Args:              cobra.ExactArgs(1),
	RunE:              runStateUnset,
	ValidArgsFunction: completeStateKeys,
}

var stateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored values",
	Long: `List every key and value in the state file.

Examples:
  yumako state list
  yumako state list -o json`,
	RunE: runStateList,
}

var stateClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored values",
	Long: `Remove every key from the state file. The file itself stays in
place, holding an empty document.

Examples:
  yumako state clear`,
	RunE: runStateClear,
}

var stateDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the state file itself",
	Long: `Delete the state file from disk. Deleting a file that does not
exist is not an error.

Examples:
  yumako state delete
  yumako state delete --force`,
	RunE: runStateDelete,
}

func init() {
	rootCmd.AddCommand(stateCmd)

	stateCmd.PersistentFlags().StringVar(&stateFile, "file", "", "State file path (default is ./.state)")

	stateCmd.AddCommand(stateGetCmd)
	stateGetCmd.Flags().StringVar(&stateGetDefault, "default", "", "Value to print when the key is unset")

	stateCmd.AddCommand(stateSetCmd)
	stateSetCmd.Flags().BoolVar(&stateSetJSON, "json", false, "Parse the value as JSON")

	stateCmd.AddCommand(stateUnsetCmd)
	stateCmd.AddCommand(stateListCmd)
	stateCmd.AddCommand(stateClearCmd)

	stateCmd.AddCommand(stateDeleteCmd)
	stateDeleteCmd.Flags().BoolVarP(&stateForce, "force", "f", false, "Skip confirmation")
}

// getStateFile returns the state file path from flags or config.
func getStateFile() string {
	if stateFile != "" {
		return stateFile
	}
	return viper.GetString("state_file")
}

func openStateFile() (*state.File, error) {
	return state.Shared(getStateFile())
}

// renderStateValue prints strings raw and everything else as JSON, so
// shell callers always get a parseable form.
func renderStateValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func runStateGet(cmd *cobra.Command, args []string) error {
	f, err := openStateFile()
	if err != nil {
		return err
	}
	key := args[0]

	value, ok := f.Get(key)
	if !ok {
		if cmd.Flags().Changed("default") {
			fmt.Println(stateGetDefault)
			return nil
		}
		return yuerrors.KeyNotFoundError(key, f.Keys(), "yumako state list")
	}

	fmt.Println(renderStateValue(value))
	return nil
}

func runStateSet(cmd *cobra.Command, args []string) error {
	f, err := openStateFile()
	if err != nil {
		return err
	}
	key, raw := args[0], args[1]

	var value any = raw
	if stateSetJSON {
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return fmt.Errorf("invalid JSON value: %w", err)
		}
	}

	if err := f.Set(key, value); err != nil {
		return err
	}

	Debugf("Wrote %s to %s", key, f.Path())
	render.Success("Set %s", key)
	return nil
}

func runStateUnset(cmd *cobra.Command, args []string) error {
	f, err := openStateFile()
	if err != nil {
		return err
	}
	key := args[0]

	if _, ok := f.Get(key); !ok {
		render.Info("Key %q is not set", key)
		return nil
	}

	if err := f.Unset(key); err != nil {
		return err
	}

	render.Success("Unset %s", key)
	return nil
}

func runStateList(cmd *cobra.Command, args []string) error {
	f, err := openStateFile()
	if err != nil {
		return err
	}

	pairs := make([]output.Pair, 0, f.Len())
	for _, key := range f.Keys() {
		value, _ := f.Get(key)
		pairs = append(pairs, output.Pair{Key: key, Value: renderStateValue(value)})
	}

	format, err := output.ParseFormat(getOutputFormat())
	if err != nil {
		return err
	}
	return output.NewFormatter(format, os.Stdout).FormatPairs(pairs)
}

func runStateClear(cmd *cobra.Command, args []string) error {
	f, err := openStateFile()
	if err != nil {
		return err
	}

	n := f.Len()
	if err := f.Clear(); err != nil {
		return err
	}

	render.Success("Cleared %d value(s) from %s", n, f.Path())
	return nil
}

func runStateDelete(cmd *cobra.Command, args []string) error {
	f, err := openStateFile()
	if err != nil {
		return err
	}

	if !stateForce {
		fmt.Printf("Delete state file %q? [y/N] ", f.Path())
		reader := bufio.NewReader(os.Stdin)
		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(strings.ToLower(input))
		if input != "y" && input != "yes" {
			render.Info("Cancelled")
			return nil
		}
	}

	if err := f.Delete(); err != nil {
		return err
	}

	render.Success("Deleted %s", f.Path())
	return nil
}

// completeStateKeys provides tab completion for state keys.
func completeStateKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	f, err := openStateFile()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return f.Keys(), cobra.ShellCompDirectiveNoFileComp
}
