package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nanw1103/yumako/pkg/template"

	"github.com/spf13/cobra"
)

var (
	renderVars            []string
	renderAllowUnresolved bool
	renderErrorOnUnused   bool
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render a {{name}} template",
	Long: `Substitute {{name}} placeholders in a file and print the result.

Pass "-" to read the template from stdin. Output goes to stdout
verbatim, so the command composes with shell redirection.

An unresolved placeholder is an error unless --allow-unresolved is
given; --error-on-unused additionally rejects vars the template never
references.

Examples:
  yumako render message.tmpl --var name=world --var day=Monday

  # From stdin
  echo 'Hello {{name}}!' | yumako render - --var name=world

  # Leave unknown placeholders in place
  yumako render config.tmpl --var env=prod --allow-unresolved`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringArrayVar(&renderVars, "var", nil, "Template variable as name=value (repeatable)")
	renderCmd.Flags().BoolVar(&renderAllowUnresolved, "allow-unresolved", false, "Leave unresolved placeholders in place")
	renderCmd.Flags().BoolVar(&renderErrorOnUnused, "error-on-unused", false, "Fail when a --var is never referenced")
}

func runRender(cmd *cobra.Command, args []string) error {
	var text []byte
	var err error
	if args[0] == "-" {
		text, err = io.ReadAll(os.Stdin)
	} else {
		text, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	vars, err := parseVarFlags(renderVars)
	if err != nil {
		return err
	}

	var opts []template.Option
	if renderAllowUnresolved {
		opts = append(opts, template.AllowUnresolved())
	}
	if renderErrorOnUnused {
		opts = append(opts, template.ErrorOnUnused())
	}

	result, err := template.Replace(string(text), vars, opts...)
	if err != nil {
		return err
	}

	fmt.Print(result)
	return nil
}

// parseVarFlags turns repeated name=value flags into a variable map.
// The value may contain '='; only the first one splits.
func parseVarFlags(pairs []string) (map[string]any, error) {
	vars := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q: expected name=value", pair)
		}
		vars[name] = value
	}
	return vars, nil
}
