package cli

import (
	"github.com/dl-alexandre/rmirror/internal/catalog"
	"github.com/dl-alexandre/rmirror/internal/utils"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [dir]",
	Short: "List markdown documents and their frontmatter",
	Long: `Walk a mirrored directory (default: the current directory) for *.md
files and list the name and description from each file's frontmatter.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalog,
}

var catalogExcludes []string

func init() {
	catalogCmd.Flags().StringSliceVar(&catalogExcludes, "exclude", nil, "Additional path patterns to skip (dir/, *.md, name)")
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	result, err := catalog.Build(root, catalog.NewMatcher(catalogExcludes), GetLogger())
	if err != nil {
		return out.WriteError("catalog", utils.NewCLIError(utils.ErrCodeInvalidArgument, err.Error()).
			WithContext("root", root).
			Build())
	}
	return out.WriteSuccess("catalog", result)
}
