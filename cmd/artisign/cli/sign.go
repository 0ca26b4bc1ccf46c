package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meigma/artisign"
	"github.com/meigma/artisign/cmd/artisign/cli/config"
	"github.com/meigma/artisign/internal/naming"
)

var (
	signOutputDir   string
	signInputDir    string
	signSuffixes    []string
	signChangedOnly bool
)

var signCmd = &cobra.Command{
	Use:   "sign [file...]",
	Short: "Sign artifacts, reusing unchanged ones from a previous build",
	Long: `Sign uploads each artifact to the signing service and writes the signed
result to the output directory under the same file name.

When an alternate source directory is given, artifacts whose content equals
an artifact of the same name and suffix in that directory are not uploaded.
The signed counterpart from the alternate target directory is copied instead.

Examples:
  artisign sign build/libs/*.jar -o build/signed --url https://signer.example.com/sign
  artisign sign --input-dir build/libs -o build/signed \
    --alternate-source-dir prev/libs --alternate-target-dir prev/signed \
    --suffix jar --suffix sources:jar
  artisign sign --input-dir build/libs -o build/signed --skip-signing`,
	RunE: runSign,
}

func init() {
	f := signCmd.Flags()
	f.StringVarP(&signOutputDir, "output-dir", "o", "", "Directory receiving the signed artifacts (required)")
	f.StringVar(&signInputDir, "input-dir", "", "Sign every regular file in this directory")
	f.StringArrayVar(&signSuffixes, "suffix", nil, "Artifact suffix eligible for reuse, as ext or classifier:ext (repeatable)")
	f.BoolVar(&signChangedOnly, "changed-only", false, "Only process files whose output is missing or older")
	f.String("url", "", "Signing service endpoint")
	f.Bool("skip-signing", false, "Copy artifacts unsigned")
	f.String("alternate-source-dir", "", "Unsigned artifacts of a previous build")
	f.String("alternate-target-dir", "", "Signed artifacts of a previous build")
	f.Bool("fail-on-inconsistency", false, "Fail when an alternate matches by name but not by content")
	f.String("checksum", "", "Checksum algorithm (sha256, sha512, blake3)")
	_ = signCmd.MarkFlagRequired("output-dir")

	mustBindPFlag("signing.url", "url")
	mustBindPFlag("signing.skip", "skip-signing")
	mustBindPFlag("reuse.source-dir", "alternate-source-dir")
	mustBindPFlag("reuse.target-dir", "alternate-target-dir")
	mustBindPFlag("reuse.fail-on-inconsistency", "fail-on-inconsistency")
	mustBindPFlag("checksum.algorithm", "checksum")

	rootCmd.AddCommand(signCmd)
}

func mustBindPFlag(key, flag string) {
	if err := viper.BindPFlag(key, signCmd.Flags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func runSign(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	sources := append([]string(nil), args...)
	if signInputDir != "" {
		files, listErr := artisign.ListFiles(signInputDir)
		if listErr != nil {
			return listErr
		}
		sources = append(sources, files...)
	}
	if len(sources) == 0 {
		return errors.New("no input files (pass files or --input-dir)")
	}

	if signChangedOnly {
		sources, err = artisign.OutOfDate(sources, signOutputDir)
		if err != nil {
			return err
		}
		if len(sources) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "All artifacts are up to date")
			return nil
		}
	}

	client, err := newSignClient(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	report, err := client.Run(ctx, artisign.RunConfig{
		OutputDir:           signOutputDir,
		AlternateSourceDir:  cfg.Reuse.SourceDir,
		AlternateTargetDir:  cfg.Reuse.TargetDir,
		FailOnInconsistency: cfg.Reuse.FailOnInconsistency,
	}, sources)
	if err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), report)
	return nil
}

// newSignClient creates an artisign client from the effective configuration
// and the --suffix flags.
func newSignClient(cfg *config.Config) (*artisign.Client, error) {
	suffixes := append([]artisign.Suffix(nil), cfg.Suffixes...)
	for _, v := range signSuffixes {
		s, err := naming.ParseSuffix(v)
		if err != nil {
			return nil, err
		}
		suffixes = append(suffixes, s)
	}

	logger, err := newLogger(os.Stderr)
	if err != nil {
		return nil, err
	}

	opts := []artisign.ClientOption{
		artisign.WithLogger(logger),
		artisign.WithSkipSigning(cfg.Signing.Skip),
		artisign.WithEndpoint(cfg.Signing.URL),
		artisign.WithUserAgent(cfg.Signing.UserAgent),
		artisign.WithChecksumAlgorithm(cfg.Checksum.Algorithm),
		artisign.WithSuffixes(suffixes...),
	}
	if cfg.Signing.Token != "" {
		opts = append(opts, artisign.WithBearerToken(cfg.Signing.Token))
	}
	if cfg.Signing.Username != "" {
		opts = append(opts, artisign.WithBasicAuth(cfg.Signing.Username, cfg.Signing.Password))
	}
	return artisign.NewClient(opts...)
}

func printSummary(w io.Writer, report *artisign.Report) {
	fmt.Fprintf(w, "%d signed, %d reused, %d copied (%s written)\n",
		report.Count(artisign.ActionSigned),
		report.Count(artisign.ActionReused),
		report.Count(artisign.ActionCopied),
		humanize.Bytes(safeUint64(report.TotalBytes())),
	)
}

// safeUint64 converts a size to uint64, clamping negatives to zero.
func safeUint64(n int64) uint64 {
	if n < 0 {
		return 0
	}
	return uint64(n)
}
