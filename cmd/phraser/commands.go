package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"harshagw/phraser/internal/analysis"
	"harshagw/phraser/internal/lexicon"
	"harshagw/phraser/internal/library"
)

func analyzeCmd() *cobra.Command {
	var configFiles []string
	var lexiconFile string
	var destutter int
	var htmlEntities bool
	var record bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze [text]",
		Short: "Analyze text against the stored phrases (or --config files)",
		Long: `Analyze one text. Without an argument the text is read from stdin.

By default the phrases stored in the workspace are used. With --config the
given phrase files are used instead and the workspace is not touched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := textArg(args)
			if err != nil {
				return err
			}

			opts := settings.Analysis
			if cmd.Flags().Changed("destutter") {
				opts.DestutterMaxConsecutive = destutter
			}
			if cmd.Flags().Changed("html-entities") {
				opts.ReplaceHTMLEntities = htmlEntities
			}

			var a *analysis.Analyzer
			var lib *library.Library
			if len(configFiles) > 0 {
				if record {
					return fmt.Errorf("--record needs the workspace phrases, not --config")
				}
				a, err = fileAnalyzer(configFiles, lexiconFile)
			} else {
				lib, err = openLibrary()
				if err != nil {
					return err
				}
				defer lib.Close()
				a, err = lib.NewAnalyzer(logger.WithName("analyzer"))
			}
			if err != nil {
				return err
			}

			res, err := a.Analyze(text, opts)
			if err != nil {
				return err
			}
			if record {
				id, err := lib.Record(res)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "Recorded %s\n", id)
			}
			if asJSON {
				return printJSON(res)
			}
			printResult(res)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&configFiles, "config", "c", nil, "Phrase configuration file (repeatable)")
	cmd.Flags().StringVar(&lexiconFile, "lexicon", "", "Lexicon text file for --config phrases")
	cmd.Flags().IntVar(&destutter, "destutter", 3, "Longest run of one character kept (0 disables)")
	cmd.Flags().BoolVar(&htmlEntities, "html-entities", true, "Replace HTML entities")
	cmd.Flags().BoolVar(&record, "record", false, "Store the result in the workspace history")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}

func checkCmd() *cobra.Command {
	var lexiconFile string

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Compile phrase configuration files and dump the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := fileAnalyzer(args, lexiconFile)
			if err != nil {
				return err
			}
			return printJSON(a.ToDict())
		},
	}

	cmd.Flags().StringVar(&lexiconFile, "lexicon", "", "Lexicon text file")
	return cmd
}

func phraseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phrase",
		Short: "Manage the phrases stored in the workspace",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <file>...",
		Short: "Store phrase configuration files, replacing phrases of the same name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := openLibrary()
			if err != nil {
				return err
			}
			defer lib.Close()

			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				name, err := lib.AddPhrase(string(data))
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Printf("Stored '%s' from %s\n", name, path)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored phrases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := openLibrary()
			if err != nil {
				return err
			}
			defer lib.Close()

			a, err := lib.NewAnalyzer(logger)
			if err != nil {
				return err
			}
			dict := a.ToDict()
			phrases := dict["phrases"].([]any)
			if len(phrases) == 0 {
				fmt.Println("No phrases")
				return nil
			}
			fmt.Printf("%d phrases (epoch %d):\n", len(phrases), lib.Epoch())
			for _, p := range phrases {
				fmt.Printf("  %s\n", describePhrase(p.(map[string]any)))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Print the stored configuration of a phrase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := openLibrary()
			if err != nil {
				return err
			}
			defer lib.Close()

			text, found, err := lib.Phrase(args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no phrase named %q", args[0])
			}
			fmt.Print(text)
			if !strings.HasSuffix(text, "\n") {
				fmt.Println()
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <name>...",
		Short: "Remove stored phrases",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := openLibrary()
			if err != nil {
				return err
			}
			defer lib.Close()

			for _, name := range args {
				existed, err := lib.RemovePhrase(name)
				if err != nil {
					return err
				}
				if existed {
					fmt.Printf("Removed '%s'\n", name)
				} else {
					fmt.Printf("No phrase named '%s'\n", name)
				}
			}
			return nil
		},
	})

	return cmd
}

func lexiconCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lexicon",
		Short: "Build and inspect the workspace lexicon",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "build <file>",
		Short: "Install a lexicon from a text file of 'word dim=value ...' lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := parseLexiconFile(args[0])
			if err != nil {
				return err
			}
			lib, err := openLibrary()
			if err != nil {
				return err
			}
			defer lib.Close()

			if err := lib.SetLexicon(b); err != nil {
				return err
			}
			lex := lib.Lexicon()
			fmt.Printf("Installed lexicon %s: %d words, dimensions %v\n", lex.ID(), lex.NumWords(), lex.Dimensions())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show the current lexicon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := openLibrary()
			if err != nil {
				return err
			}
			defer lib.Close()

			lex := lib.Lexicon()
			if lex == nil {
				fmt.Println("No lexicon")
				return nil
			}
			fmt.Printf("Lexicon %s:\n", lex.ID())
			fmt.Printf("  Path: %s\n", lex.Path())
			fmt.Printf("  Words: %d\n", lex.NumWords())
			fmt.Printf("  Dimensions: %v\n", lex.Dimensions())
			return nil
		},
	})

	cmd.AddCommand(lexiconWordsCmd())
	return cmd
}

func lexiconWordsCmd() *cobra.Command {
	var prefix, pattern, similar string
	var fuzziness uint8
	var showFeatures bool

	cmd := &cobra.Command{
		Use:   "words",
		Short: "List lexicon words by prefix, regular expression or edit distance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := openLibrary()
			if err != nil {
				return err
			}
			defer lib.Close()

			lex := lib.Lexicon()
			if lex == nil {
				return fmt.Errorf("no lexicon installed")
			}

			var words []string
			switch {
			case pattern != "":
				words, err = lex.MatchingWords(pattern)
			case similar != "":
				words, err = lex.SimilarWords(lexicon.NormalizeWord(similar), fuzziness)
			default:
				words, err = lex.Words(lexicon.NormalizeWord(prefix))
			}
			if err != nil {
				return err
			}

			for _, w := range words {
				if !showFeatures {
					fmt.Println(w)
					continue
				}
				var feats []string
				bm := lex.Lookup(w)
				if bm == nil {
					fmt.Println(w)
					continue
				}
				it := bm.Iterator()
				for it.HasNext() {
					if name, ok := lex.FeatureName(it.Next()); ok {
						feats = append(feats, name)
					}
				}
				fmt.Printf("%s %s\n", w, strings.Join(feats, " "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "Only words starting with this prefix")
	cmd.Flags().StringVar(&pattern, "regex", "", "Only words matching this regular expression")
	cmd.Flags().StringVar(&similar, "similar", "", "Only words within --fuzziness edits of this word")
	cmd.Flags().Uint8Var(&fuzziness, "fuzziness", 1, "Edit distance for --similar (1 or 2)")
	cmd.Flags().BoolVarP(&showFeatures, "features", "f", false, "Print each word's features")
	cmd.MarkFlagsMutuallyExclusive("prefix", "regex", "similar")
	return cmd
}

func historyCmd() *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded analyses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := openLibrary()
			if err != nil {
				return err
			}
			defer lib.Close()

			recs, err := lib.History(limit)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(recs)
			}
			if len(recs) == 0 {
				fmt.Println("No history")
				return nil
			}
			for _, r := range recs {
				fmt.Printf("%s  %s  %d matches  %q\n", r.Time.Local().Format("2006-01-02 15:04:05"), r.ID, r.Matches, r.Text)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of records (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	return cmd
}

// fileAnalyzer builds an analyzer from phrase files outside the workspace.
func fileAnalyzer(paths []string, lexiconFile string) (*analysis.Analyzer, error) {
	texts := make([]string, len(paths))
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		texts[i] = string(data)
	}

	cfg := analysis.DefaultConfig()
	cfg.Logger = logger.WithName("analyzer")
	if lexiconFile != "" {
		b, err := parseLexiconFile(lexiconFile)
		if err != nil {
			return nil, err
		}
		cfg.Lexicon = b
	}
	a := analysis.New(cfg)
	if err := a.Init(texts); err != nil {
		return nil, err
	}
	return a, nil
}

func parseLexiconFile(path string) (*lexicon.Builder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := lexicon.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

func textArg(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printResult(res *analysis.Result) {
	fmt.Printf("Clean:  %s\n", res.CleanText.String())
	fmt.Printf("Tokens: %s\n", strings.Join(res.Tokens, " | "))
	if res.MatchCount() == 0 {
		fmt.Println("No matches")
		return
	}
	for _, pr := range res.PhraseResults {
		if len(pr.Matches) == 0 {
			continue
		}
		fmt.Printf("%s (%d matches):\n", pr.PhraseName, len(pr.Matches))
		for _, m := range pr.Matches {
			idx := m.IndexList()
			parts := make([]string, len(pr.PieceNames))
			for i, name := range pr.PieceNames {
				parts[i] = fmt.Sprintf("%s=%q", name, strings.Join(res.Tokens[idx[i]:idx[i+1]], " "))
			}
			span := res.TokenOrigin(idx[0])
			last := res.TokenOrigin(m.EndExcl - 1)
			fmt.Printf("  %v %s  <%s>\n", idx, strings.Join(parts, " "), res.OriginalText[span.Begin:last.End].String())
		}
	}
}

func describePhrase(p map[string]any) string {
	var pieces []string
	for _, pc := range p["pieces"].([]any) {
		d := pc.(map[string]any)
		pieces = append(pieces, fmt.Sprintf("%s:%s", d["name"], d["type"]))
	}
	return fmt.Sprintf("%s = %s", p["name"], strings.Join(pieces, " "))
}
