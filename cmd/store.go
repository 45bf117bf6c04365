package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	yuerrors "github.com/nanw1103/yumako/internal/errors"
	"github.com/nanw1103/yumako/internal/fstore"
	"github.com/nanw1103/yumako/internal/output"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	storeDir    string
	storeFormat string
	storeForce  bool
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Keep documents in a directory of files",
	Long: `A file-backed key-value store: one file per key inside a directory,
encoded as JSON, YAML or plain text.

The directory defaults to ./.yumako-store and can be moved with --dir,
the store_dir config key, or YUMAKO_STORE_DIR. The format defaults to
json (store_format / YUMAKO_STORE_FORMAT).

Examples:
  # Store and fetch a JSON document
  yumako store set greeting '{"text": "hello"}'
  yumako store get greeting

  # Plain text values
  yumako store set motd "be kind" --dir ./notes --format text

  # Inspect the store
  yumako store keys
  yumako store list

  # Housekeeping
  yumako store delete greeting
  yumako store clear --force`,
}

var storeGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a stored document",
	Long: `Print the document stored under a key, in its encoded form.

Examples:
  yumako store get greeting`,
	Args:              cobra.ExactArgs(1),
	RunE:              runStoreGet,
	ValidArgsFunction: completeStoreKeys,
}

var storeSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a document",
	Long: `Store a document under a key. The value must be valid in the
store's format; for text stores it is kept byte for byte.

Examples:
  yumako store set greeting '{"text": "hello"}'
  yumako store set config 'retries: 3' --format yaml`,
	Args: cobra.ExactArgs(2),
	RunE: runStoreSet,
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Remove a stored document",
	Long: `Remove the document stored under a key.

Examples:
  yumako store delete greeting`,
	Args:              cobra.ExactArgs(1),
	RunE:              runStoreDelete,
	ValidArgsFunction: completeStoreKeys,
}

var storeKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List stored keys",
	Long: `List every key in the store, sorted.

Examples:
  yumako store keys
  yumako store keys -o json`,
	RunE: runStoreKeys,
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents with size and age",
	Long: `List every document in the store with its size and modification
time.

Examples:
  yumako store list
  yumako store list -o csv`,
	RunE: runStoreList,
}

var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every document in the store",
	Long: `Remove every document of the store's format. Files in other
formats are left alone.

Examples:
  yumako store clear
  yumako store clear --force`,
	RunE: runStoreClear,
}

func init() {
	rootCmd.AddCommand(storeCmd)

	storeCmd.PersistentFlags().StringVar(&storeDir, "dir", "", "Store directory (default is ./.yumako-store)")
	storeCmd.PersistentFlags().StringVar(&storeFormat, "format", "", "Store format: json, yaml, text")

	storeCmd.AddCommand(storeGetCmd)
	storeCmd.AddCommand(storeSetCmd)
	storeCmd.AddCommand(storeDeleteCmd)
	storeCmd.AddCommand(storeKeysCmd)
	storeCmd.AddCommand(storeListCmd)

	storeCmd.AddCommand(storeClearCmd)
	storeClearCmd.Flags().BoolVarP(&storeForce, "force", "f", false, "Skip confirmation")
}

// getStoreDir returns the store directory from flags or config.
func getStoreDir() string {
	if storeDir != "" {
		return storeDir
	}
	return viper.GetString("store_dir")
}

// getStoreFormat returns the store format from flags or config.
func getStoreFormat() string {
	if storeFormat != "" {
		return storeFormat
	}
	return viper.GetString("store_format")
}

func openStore() (*fstore.Store, error) {
	return fstore.Open(getStoreDir(), fstore.WithFormat(getStoreFormat()))
}

// storeKeyNotFound turns a missing key into a suggestion-carrying error.
func storeKeyNotFound(s *fstore.Store, key string) error {
	keys, err := s.Keys()
	if err != nil {
		keys = nil
	}
	return yuerrors.KeyNotFoundError(key, keys, "yumako store keys")
}

func runStoreGet(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	key := args[0]

	data, err := s.GetBytes(key)
	if errors.Is(err, fstore.ErrNotFound) {
		return storeKeyNotFound(s, key)
	}
	if err != nil {
		return err
	}

	os.Stdout.Write(data)
	if len(data) == 0 || data[len(data)-1] != '\n' {
		fmt.Println()
	}
	return nil
}

func runStoreSet(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	key, raw := args[0], args[1]

	// Round-trip through the codec so malformed input is rejected here
	// instead of being stored encoded-as-a-string.
	var value any = raw
	codec, err := fstore.LookupCodec(s.Format())
	if err != nil {
		return err
	}
	if codec.Name() != "text" {
		var doc any
		if err := codec.Unmarshal([]byte(raw), &doc); err != nil {
			return fmt.Errorf("value is not valid %s: %w", codec.Name(), err)
		}
		value = doc
	}

	if err := s.Set(key, value); err != nil {
		return err
	}

	Debugf("Wrote %s to %s", key, s.Dir())
	render.Success("Stored %s", key)
	return nil
}

func runStoreDelete(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	key := args[0]

	err = s.Delete(key)
	if errors.Is(err, fstore.ErrNotFound) {
		return storeKeyNotFound(s, key)
	}
	if err != nil {
		return err
	}

	render.Success("Deleted %s", key)
	return nil
}

func runStoreKeys(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}

	keys, err := s.Keys()
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(getOutputFormat())
	if err != nil {
		return err
	}
	return output.NewFormatter(format, os.Stdout).FormatKeys(keys)
}

func runStoreList(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}

	infos, err := s.List()
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(getOutputFormat())
	if err != nil {
		return err
	}
	return output.NewFormatter(format, os.Stdout).FormatObjects(infos)
}

func runStoreClear(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}

	if !storeForce {
		fmt.Printf("Remove every %s document under %q? [y/N] ", s.Format(), s.Dir())
		reader := bufio.NewReader(os.Stdin)
		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(strings.ToLower(input))
		if input != "y" && input != "yes" {
			render.Info("Cancelled")
			return nil
		}
	}

	removed, err := s.Clear()
	if err != nil {
		return err
	}

	render.Success("Removed %d object(s) from %s", removed, s.Dir())
	return nil
}

// completeStoreKeys provides tab completion for store keys.
func completeStoreKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	s, err := openStore()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	keys, err := s.Keys()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return keys, cobra.ShellCompDirectiveNoFileComp
}
