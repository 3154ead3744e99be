package main

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	flag "github.com/spf13/pflag"

	"harshagw/phraser/internal/analysis"
	"harshagw/phraser/internal/library"
	"harshagw/phraser/internal/lexicon"
)

func main() {
	numTexts := flag.IntP("texts", "n", defaultTexts, "Number of generated texts")
	textFile := flag.String("file", "", "Read texts from this file, one per line")
	workers := flag.Int("workers", runtime.GOMAXPROCS(0), "Goroutines for the parallel run")
	flag.Parse()

	fmt.Println("Phrase Detection Benchmark")
	fmt.Println("==========================")
	fmt.Println()

	benchStart := time.Now()

	texts := generateTexts(*numTexts, 1)
	if *textFile != "" {
		var err error
		texts, err = loadTexts(*textFile)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}
	if len(texts) == 0 {
		fmt.Println("Error: no texts to analyze")
		os.Exit(1)
	}
	fmt.Printf("Loaded %d texts\n\n", len(texts))

	dir, err := os.MkdirTemp("", "bench-*")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	lib := runSetupBenchmark(dir)
	defer lib.Close()

	a, err := lib.NewAnalyzer(logr.Discard())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	runInitBenchmark(lib)
	runTextBenchmarks(a)
	runCorpusBenchmark(a, texts, *workers)

	fmt.Printf("Total time: %.2f seconds\n", time.Since(benchStart).Seconds())
}

func runSetupBenchmark(dir string) *library.Library {
	fmt.Println("LEXICON")
	fmt.Println("-------")

	start := time.Now()
	b, err := lexicon.Parse(strings.NewReader(benchLexicon()))
	if err != nil {
		fmt.Printf("Error parsing lexicon: %v\n", err)
		os.Exit(1)
	}
	parsed := time.Since(start)

	lib, err := library.Open(library.DefaultConfig(dir))
	if err != nil {
		fmt.Printf("Error opening library: %v\n", err)
		os.Exit(1)
	}
	start = time.Now()
	if err := lib.SetLexicon(b); err != nil {
		fmt.Printf("Error installing lexicon: %v\n", err)
		os.Exit(1)
	}
	installed := time.Since(start)

	lex := lib.Lexicon()
	var size int64
	if info, err := os.Stat(lex.Path()); err == nil {
		size = info.Size()
	}
	fmt.Printf("  Words:   %d\n", lex.NumWords())
	fmt.Printf("  Parse:   %v\n", parsed.Round(time.Microsecond))
	fmt.Printf("  Install: %v\n", installed.Round(time.Microsecond))
	fmt.Printf("  Size:    %s (%s/word)\n", formatBytes(size), formatBytes(size/int64(max(lex.NumWords(), 1))))
	fmt.Println()

	for _, p := range benchPhrases {
		if _, err := lib.AddPhrase(p); err != nil {
			fmt.Printf("Error storing phrase: %v\n", err)
			os.Exit(1)
		}
	}
	return lib
}

func runInitBenchmark(lib *library.Library) {
	fmt.Println("INIT")
	fmt.Println("----")

	// Warm up
	lib.NewAnalyzer(logr.Discard())

	runs := 20
	start := time.Now()
	for i := 0; i < runs; i++ {
		if _, err := lib.NewAnalyzer(logr.Discard()); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("  Phrases: %d\n", len(benchPhrases))
	fmt.Printf("  Time:    %s\n", formatLatency(time.Since(start)/time.Duration(runs)))
	fmt.Println()
}

func runTextBenchmarks(a *analysis.Analyzer) {
	fmt.Println("SINGLE TEXTS")
	fmt.Println("------------")
	runTexts(a, []string{
		"hello",
		"thanks obama",
		"Thanks Obama! thanks BIDEN, thaaaaaanks trump",
		"the president is so really great lol",
		"damn it all, that $5k was for the senate and congress",
		"haha &amp; lol &quot;lmao&quot; hahaha",
		strings.Repeat("thanks obama ", 100),
		strings.Repeat("x", 4096),
	})
}

func runTexts(a *analysis.Analyzer, texts []string) {
	opts := analysis.DefaultOptions()
	for _, text := range texts {
		latency, matches := benchmarkText(a, text, opts)
		label := text
		if len(label) > 50 {
			label = fmt.Sprintf("%s... (%d bytes)", label[:30], len(label))
		}
		fmt.Printf("  %-55s %s  (%d matches)\n", label, formatLatency(latency), matches)
	}
	fmt.Println()
}

func benchmarkText(a *analysis.Analyzer, text string, opts analysis.Options) (time.Duration, int) {
	var matches int

	// Warm up
	for i := 0; i < 10; i++ {
		res, _ := a.Analyze(text, opts)
		if res != nil {
			matches = res.MatchCount()
		}
	}

	// Benchmark
	iterations := 500
	start := time.Now()
	for i := 0; i < iterations; i++ {
		a.Analyze(text, opts)
	}
	return time.Since(start) / time.Duration(iterations), matches
}

func runCorpusBenchmark(a *analysis.Analyzer, texts []string, workers int) {
	fmt.Println("CORPUS")
	fmt.Println("------")
	opts := analysis.DefaultOptions()

	latencies := make([]time.Duration, len(texts))
	matches := 0
	start := time.Now()
	for i, text := range texts {
		t := time.Now()
		res, err := a.Analyze(text, opts)
		latencies[i] = time.Since(t)
		if err == nil {
			matches += res.MatchCount()
		}
	}
	elapsed := time.Since(start)

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	fmt.Printf("  Texts:      %d (%d matches)\n", len(texts), matches)
	fmt.Printf("  Time:       %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("  Throughput: %.0f texts/sec\n", float64(len(texts))/elapsed.Seconds())
	fmt.Printf("  p50: %s  p99: %s  max: %s\n",
		formatLatency(percentile(latencies, 0.50)),
		formatLatency(percentile(latencies, 0.99)),
		formatLatency(latencies[len(latencies)-1]))
	fmt.Println()

	// Parallel run over a shared analyzer.
	start = time.Now()
	var wg sync.WaitGroup
	next := make(chan string)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for text := range next {
				a.Analyze(text, opts)
			}
		}()
	}
	for _, text := range texts {
		next <- text
	}
	close(next)
	wg.Wait()
	elapsed = time.Since(start)

	fmt.Printf("  Parallel (%d workers): %.0f texts/sec\n", workers, float64(len(texts))/elapsed.Seconds())
	fmt.Println()
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}

func formatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	if bytes >= MB {
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	}
	if bytes >= KB {
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	}
	return fmt.Sprintf("%d B", bytes)
}

func formatLatency(d time.Duration) string {
	return fmt.Sprintf("%8.2f µs", float64(d.Nanoseconds())/1000)
}
