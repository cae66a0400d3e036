// compare_bench compares two `go test -bench` outputs for the viewer hot
// paths and fails when any tracked benchmark regressed past the threshold.
//
//	go test ./internal/window ./internal/raster -run '^$' -bench . > current.txt
//	go run ./scripts/ci -baseline base.txt -current current.txt
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	benchLine  = regexp.MustCompile(`^(Benchmark(?:WindowRange|WindowRender|Encode)\S*)\s+\d+\s+([\d.]+)\s+ns/op`)
	procSuffix = regexp.MustCompile(`-\d+$`)

	tracked = []string{
		"BenchmarkWindowRange/100/cold-jump",
		"BenchmarkWindowRange/100/warm-scroll",
		"BenchmarkWindowRange/10k/cold-jump",
		"BenchmarkWindowRange/10k/warm-scroll",
		"BenchmarkWindowRender",
		"BenchmarkEncode",
	}
)

type result struct {
	name     string
	base     float64
	current  float64
	deltaPct float64
	ok       bool
}

func main() {
	baselinePath := flag.String("baseline", "", "benchmark output of the base revision")
	currentPath := flag.String("current", "", "benchmark output of this revision")
	threshold := flag.Float64("max-regression-pct", 20, "largest allowed slowdown in percent")
	flag.Parse()

	if *baselinePath == "" || *currentPath == "" {
		fatalf("both -baseline and -current are required")
	}
	if *threshold < 0 {
		fatalf("-max-regression-pct must not be negative")
	}

	base, err := readBenchmarks(*baselinePath)
	if err != nil {
		fatalf("baseline: %v", err)
	}
	current, err := readBenchmarks(*currentPath)
	if err != nil {
		fatalf("current: %v", err)
	}
	results, err := compare(base, current, *threshold)
	if err != nil {
		fatalf("compare: %v", err)
	}

	report(os.Stdout, results, *threshold)
	if summary := os.Getenv("GITHUB_STEP_SUMMARY"); summary != "" {
		f, err := os.OpenFile(summary, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
		if err != nil {
			fatalf("open step summary: %v", err)
		}
		report(f, results, *threshold)
		f.Close()
	}

	for _, r := range results {
		if !r.ok {
			os.Exit(1)
		}
	}
}

// readBenchmarks returns ns/op by benchmark name with the GOMAXPROCS suffix
// removed.
func readBenchmarks(path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[string]float64, len(tracked))
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		m := benchLine.FindStringSubmatch(strings.TrimSpace(sc.Text()))
		if m == nil {
			continue
		}
		ns, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return nil, fmt.Errorf("ns/op for %s: %w", m[1], err)
		}
		out[procSuffix.ReplaceAllString(m[1], "")] = ns
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("no tracked benchmarks in output")
	}
	return out, nil
}

// compare requires every tracked benchmark in current. A benchmark missing
// from the baseline is new and passes against itself.
func compare(base, current map[string]float64, threshold float64) ([]result, error) {
	results := make([]result, 0, len(tracked))
	for _, name := range tracked {
		cur, ok := current[name]
		if !ok {
			return nil, fmt.Errorf("missing current benchmark %s", name)
		}
		b, ok := base[name]
		if !ok {
			b = cur
		}
		if b <= 0 {
			return nil, fmt.Errorf("non-positive baseline for %s", name)
		}
		delta := (cur - b) / b * 100
		results = append(results, result{name: name, base: b, current: cur, deltaPct: delta, ok: delta <= threshold})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].name < results[j].name })
	return results, nil
}

func report(w io.Writer, results []result, threshold float64) {
	fmt.Fprintf(w, "## Viewer benchmarks\n\nThreshold: %.2f%%\n\n", threshold)
	fmt.Fprintln(w, "| Benchmark | Base ns/op | Current ns/op | Delta | |")
	fmt.Fprintln(w, "|---|---:|---:|---:|---|")
	for _, r := range results {
		verdict := "ok"
		if !r.ok {
			verdict = "REGRESSED"
		}
		delta := r.deltaPct
		if math.IsNaN(delta) || math.IsInf(delta, 0) {
			delta = 0
		}
		fmt.Fprintf(w, "| %s | %.0f | %.0f | %+.2f%% | %s |\n", r.name, r.base, r.current, delta, verdict)
	}
	fmt.Fprintln(w)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
