package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/gonkalabs/notetoken/internal/content"
	"github.com/gonkalabs/notetoken/internal/content/headprobe"
	"github.com/gonkalabs/notetoken/internal/mediacache"
)

type tokenizeFlags struct {
	tags        string
	bare        bool
	allHashtags bool
	classify    bool
	timeout     time.Duration
	cachePath   string
	kinds       []string
	format      string
}

func newRootCommand() *cobra.Command {
	var flags tokenizeFlags

	rootCmd := &cobra.Command{
		Use:           "notetoken [text...]",
		Short:         "Split note text into typed tokens",
		Long:          "Split note text into typed tokens. Reads standard input when no text is given.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenize(cmd, args, flags)
		},
	}

	f := rootCmd.Flags()
	f.StringVar(&flags.tags, "tags", "", `Annotations as a JSON array of arrays, e.g. '[["t","nostr"]]'`)
	f.BoolVar(&flags.bare, "bare", false, "Also detect NIP-19 entities without the nostr: prefix")
	f.BoolVar(&flags.allHashtags, "all-hashtags", false, "Keep hashtags that have no matching t tag")
	f.BoolVar(&flags.classify, "classify", false, "Resolve link media kinds with HEAD requests")
	f.DurationVar(&flags.timeout, "timeout", 5*time.Second, "Per-link lookup timeout")
	f.StringVar(&flags.cachePath, "cache", "", "SQLite file for remembered link classifications")
	f.StringSliceVar(&flags.kinds, "kind", nil, "Only print tokens of these kinds (repeatable)")
	f.StringVar(&flags.format, "format", "auto", "Output format: auto, table or json")

	rootCmd.AddCommand(newKindsCommand())
	return rootCmd
}

func newKindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List token kinds and their priorities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows := make([][]string, 0, len(content.Kinds()))
			for _, k := range content.Kinds() {
				rows = append(rows, []string{k.String(), strconv.Itoa(k.Priority())})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"KIND", "PRIORITY"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}

func runTokenize(cmd *cobra.Command, args []string, flags tokenizeFlags) error {
	text, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	tags, err := parseTags(flags.tags)
	if err != nil {
		return err
	}
	kinds, err := parseKindFlags(flags.kinds)
	if err != nil {
		return err
	}
	switch flags.format {
	case "auto", "table", "json":
	default:
		return fmt.Errorf("unknown format %q (want auto, table or json)", flags.format)
	}

	opts := content.Options{
		IncludeBareProtocolReferences: flags.bare,
		RestrictTagsToAnnotations:     !flags.allHashtags,
	}

	var spans []content.Span
	if flags.classify {
		var cache content.Cache = content.NewMemoryCache()
		if flags.cachePath != "" {
			store, err := mediacache.Open(flags.cachePath)
			if err != nil {
				return err
			}
			defer store.Close()
			cache = store
		}
		tok := content.NewWithClassifier(headprobe.New(flags.timeout), cache, 0)
		spans = tok.TokenizeWithClassification(cmd.Context(), text, tags, &opts)
	} else {
		spans = content.Tokenize(text, tags, &opts)
	}
	if len(kinds) > 0 {
		spans = content.FilterByKinds(spans, kinds...)
	}

	out := cmd.OutOrStdout()
	if flags.format == "json" || (flags.format == "auto" && !isTerminal(out)) {
		if spans == nil {
			spans = []content.Span{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(spans)
	}
	fmt.Fprintln(out, renderSpans(spans))
	return nil
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(b), "\n"), nil
}

func parseTags(raw string) (content.Annotations, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var tags content.Annotations
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("parse --tags: %w", err)
	}
	return tags, nil
}

func parseKindFlags(names []string) ([]content.Kind, error) {
	kinds := make([]content.Kind, 0, len(names))
	for _, n := range names {
		k, err := content.ParseKind(strings.TrimSpace(n))
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func renderSpans(spans []content.Span) string {
	rows := make([][]string, 0, len(spans))
	for i, s := range spans {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			s.Kind.String(),
			strconv.Itoa(s.Start),
			strconv.Itoa(s.End),
			strconv.Quote(s.Text),
			formatMetadata(s.Metadata),
		})
	}
	return renderTable(
		[]string{"#", "KIND", "START", "END", "TEXT", "METADATA"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	)
}

func formatMetadata(m content.Metadata) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m[k]))
	}
	return strings.Join(parts, " ")
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
