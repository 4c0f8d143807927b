package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/harun/toolgate/pkg/catalog"
	"github.com/harun/toolgate/pkg/coretools"
	"github.com/spf13/cobra"
)

var (
	toolsSchemas bool
	toolsFormat  string
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the builtin tools",
	Long: `List the tools the gateway serves. With --schemas the function schemas
are printed as JSON, in the same shape GET /tools/schemas returns.`,
	RunE: runTools,
}

func init() {
	toolsCmd.Flags().BoolVar(&toolsSchemas, "schemas", false, "print function schemas as JSON")
	toolsCmd.Flags().StringVar(&toolsFormat, "format", catalog.FormatFunction, "schema format (function, openai, anthropic)")
	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, args []string) error {
	cat, err := coretools.NewCatalog(coretools.DefaultOptions())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if toolsSchemas {
		schemas, err := cat.Render(toolsFormat)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(schemas)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tAUTH\tDESCRIPTION")
	for _, def := range cat.List() {
		auth := "no"
		if def.RequiresAuth {
			auth = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", def.Name, auth, def.Description)
	}
	return w.Flush()
}
