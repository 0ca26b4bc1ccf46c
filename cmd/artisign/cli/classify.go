package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meigma/artisign/cmd/artisign/cli/config"
	"github.com/meigma/artisign/internal/naming"
)

var classifySuffixes []string

var classifyCmd = &cobra.Command{
	Use:   "classify <name>...",
	Short: "Show how artifact names are grouped for reuse",
	Long: `Classify prints the base artifact name and the matched suffix of each
file name, using the configured suffixes plus any --suffix flags.

Two artifacts are compared for reuse only when both columns are equal.

Examples:
  artisign classify mylib-1.2.3-sources.jar mylib_1.0.pom --suffix jar --suffix sources:jar`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringArrayVar(&classifySuffixes, "suffix", nil, "Additional suffix, as ext or classifier:ext (repeatable)")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	suffixes := cfg.Suffixes
	for _, v := range classifySuffixes {
		s, parseErr := naming.ParseSuffix(v)
		if parseErr != nil {
			return parseErr
		}
		suffixes = append(suffixes, s)
	}
	set, err := naming.NewSuffixSet(suffixes...)
	if err != nil {
		return err
	}

	printClassification(cmd.OutOrStdout(), set, args)
	return nil
}

func printClassification(w io.Writer, set *naming.SuffixSet, names []string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tBASE\tSUFFIX")
	for _, name := range names {
		suffix := "-"
		if s, ok := set.Match(name); ok {
			suffix = s.Pattern()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, naming.BaseArtifactName(name), suffix)
	}
	tw.Flush()
}
