package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/spf13/cobra"

	"harshagw/phraser/internal/analysis"
	"harshagw/phraser/internal/library"
)

type REPL struct {
	lib      *library.Library
	analyzer *analysis.Analyzer
	opts     analysis.Options
	record   bool
}

var replSuggestions = []prompt.Suggest{
	{Text: "analyze", Description: "Analyze the rest of the line"},
	{Text: "set", Description: "Change an analysis option"},
	{Text: "phrases", Description: "List loaded phrases"},
	{Text: "reload", Description: "Reload phrases from the workspace"},
	{Text: "dump", Description: "Dump the loaded configuration"},
	{Text: "history", Description: "Show recent recorded analyses"},
	{Text: "help", Description: "Show help"},
	{Text: "quit", Description: "Exit"},
}

func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive analysis against the workspace phrases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := openLibrary()
			if err != nil {
				return err
			}
			defer lib.Close()

			r := &REPL{lib: lib, opts: settings.Analysis}
			if err := r.reload(); err != nil {
				return err
			}

			fmt.Println("Phraser REPL")
			fmt.Println()
			printHelp()
			fmt.Println()
			fmt.Printf("Workspace %s (%d phrases, epoch %d)\n\n", lib.Dir(), len(r.analyzer.Phrases()), lib.Epoch())

			p := prompt.New(
				r.executor,
				r.completer,
				prompt.OptionPrefix("phraser >> "),
				prompt.OptionTitle("phraser"),
			)
			p.Run()
			return nil
		},
	}
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  <text>                        - Analyze text")
	fmt.Println("  analyze <text>                - Analyze text (even if it starts with a command)")
	fmt.Println("  set destutter <n>             - Longest run of one character kept (0 disables)")
	fmt.Println("  set entities <true|false>     - Replace HTML entities")
	fmt.Println("  set record <true|false>       - Store results in the history")
	fmt.Println("  phrases                       - List loaded phrases")
	fmt.Println("  reload                        - Reload phrases from the workspace")
	fmt.Println("  dump                          - Dump the loaded configuration")
	fmt.Println("  history [n]                   - Show recent recorded analyses")
	fmt.Println("  help                          - Show this help")
	fmt.Println("  quit                          - Exit")
}

func (r *REPL) completer(d prompt.Document) []prompt.Suggest {
	if strings.Contains(d.TextBeforeCursor(), " ") {
		return nil
	}
	return prompt.FilterHasPrefix(replSuggestions, d.GetWordBeforeCursor(), true)
}

func (r *REPL) executor(input string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return
	}

	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case "analyze":
		r.cmdAnalyze(strings.TrimSpace(strings.TrimPrefix(input, cmd)))
	case "set":
		r.cmdSet(parts[1:])
	case "phrases":
		r.cmdPhrases()
	case "reload":
		if err := r.reload(); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("Reloaded %d phrases\n", len(r.analyzer.Phrases()))
	case "dump":
		if err := printJSON(r.analyzer.ToDict()); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	case "history":
		r.cmdHistory(parts[1:])
	case "help":
		printHelp()
	case "quit", "exit":
		fmt.Println("Goodbye!")
		r.lib.Close()
		os.Exit(0)
	default:
		r.cmdAnalyze(input)
	}
}

func (r *REPL) reload() error {
	a, err := r.lib.NewAnalyzer(logger.WithName("analyzer"))
	if err != nil {
		return err
	}
	r.analyzer = a
	return nil
}

func (r *REPL) cmdAnalyze(text string) {
	res, err := r.analyzer.Analyze(text, r.opts)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	printResult(res)
	if r.record {
		id, err := r.lib.Record(res)
		if err != nil {
			fmt.Printf("Error recording: %v\n", err)
			return
		}
		fmt.Printf("Recorded %s\n", id)
	}
}

func (r *REPL) cmdSet(args []string) {
	if len(args) != 2 {
		fmt.Println("Usage: set destutter <n> | set entities <true|false> | set record <true|false>")
		return
	}

	switch args[0] {
	case "destutter":
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			fmt.Printf("Invalid destutter value: %s\n", args[1])
			return
		}
		r.opts.DestutterMaxConsecutive = n
	case "entities":
		b, err := strconv.ParseBool(args[1])
		if err != nil {
			fmt.Printf("Invalid entities value: %s\n", args[1])
			return
		}
		r.opts.ReplaceHTMLEntities = b
	case "record":
		b, err := strconv.ParseBool(args[1])
		if err != nil {
			fmt.Printf("Invalid record value: %s\n", args[1])
			return
		}
		r.record = b
	default:
		fmt.Printf("Unknown option: %s\n", args[0])
		return
	}
	fmt.Printf("destutter=%d entities=%t record=%t\n", r.opts.DestutterMaxConsecutive, r.opts.ReplaceHTMLEntities, r.record)
}

func (r *REPL) cmdPhrases() {
	phrases := r.analyzer.ToDict()["phrases"].([]any)
	if len(phrases) == 0 {
		fmt.Println("No phrases")
		return
	}
	fmt.Printf("%d phrases:\n", len(phrases))
	for _, p := range phrases {
		fmt.Printf("  %s\n", describePhrase(p.(map[string]any)))
	}
}

func (r *REPL) cmdHistory(args []string) {
	limit := 10
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			fmt.Printf("Invalid count: %s\n", args[0])
			return
		}
		limit = n
	}

	recs, err := r.lib.History(limit)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(recs) == 0 {
		fmt.Println("No history")
		return
	}
	for _, rec := range recs {
		fmt.Printf("  %s %d matches %q\n", rec.ID, rec.Matches, rec.Text)
	}
}
