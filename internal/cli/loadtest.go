package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

var defaultLoadQueries = []string{
	"dogs",
	"love dogs",
	"greatest pets",
	"cats",
	"pretty okay",
	"i love cats",
	"the dogs are okay",
	"zebra",
}

type loadTestOptions struct {
	baseURL     string
	concurrency int
	duration    time.Duration
	limit       int
	queries     []string
}

// loadStats is shared by all workers.
type loadStats struct {
	mu          sync.Mutex
	total       int64
	failed      int64
	latencies   []time.Duration
	statusCodes map[int]int64
}

func (s *loadStats) record(d time.Duration, status int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	if err != nil {
		s.failed++
		return
	}
	if status < 200 || status >= 300 {
		s.failed++
	}
	s.latencies = append(s.latencies, d)
	s.statusCodes[status]++
}

func NewCmdLoadTest() *cobra.Command {
	opts := &loadTestOptions{}
	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Drive a running search service with concurrent queries.",
		Long: heredoc.Doc(`
			loadtest sends search requests from --concurrency workers for
			--duration and prints throughput, latency percentiles and status
			codes. Queries cycle through --query values (repeatable) or a
			built-in list matching the demo corpus.

			Examples:
			  tfidf loadtest --url http://localhost:8080 --duration 10s
			  tfidf loadtest -c 50 --query dogs --query "love dogs"
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.concurrency < 1 {
				return errors.New("--concurrency must be positive")
			}
			if len(opts.queries) == 0 {
				opts.queries = defaultLoadQueries
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Target:      %s\n", opts.baseURL)
			fmt.Fprintf(out, "Concurrency: %d\n", opts.concurrency)
			fmt.Fprintf(out, "Duration:    %s\n", opts.duration)
			fmt.Fprintf(out, "Queries:     %d unique\n\n", len(opts.queries))

			stats := runLoadTest(cmd.Context(), opts)
			printLoadReport(out, stats, opts.duration)
			if stats.total == 0 {
				return errors.New("no requests completed; is the service running?")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "base URL of the search service")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "c", 10, "concurrent workers")
	cmd.Flags().DurationVarP(&opts.duration, "duration", "d", 30*time.Second, "test duration")
	cmd.Flags().IntVar(&opts.limit, "limit", 10, "limit parameter sent with each query")
	cmd.Flags().StringArrayVarP(&opts.queries, "query", "q", nil, "query to send (repeatable)")
	return cmd
}

func runLoadTest(parent context.Context, opts *loadTestOptions) *loadStats {
	stats := &loadStats{statusCodes: make(map[int]int64)}
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        opts.concurrency * 2,
			MaxIdleConnsPerHost: opts.concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	defer client.CloseIdleConnections()

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, opts.duration)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < opts.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := w; ctx.Err() == nil; i++ {
				query := opts.queries[i%len(opts.queries)]
				target := fmt.Sprintf("%s/api/v1/search?q=%s&limit=%d", opts.baseURL, url.QueryEscape(query), opts.limit)
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
				if err != nil {
					stats.record(0, 0, err)
					return
				}
				start := time.Now()
				resp, err := client.Do(req)
				elapsed := time.Since(start)
				if err != nil {
					// Requests cut off by the end of the run are not failures.
					if ctx.Err() == nil {
						stats.record(elapsed, 0, err)
					}
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				stats.record(elapsed, resp.StatusCode, nil)
			}
		}()
	}
	wg.Wait()
	return stats
}

func printLoadReport(w io.Writer, stats *loadStats, duration time.Duration) {
	stats.mu.Lock()
	defer stats.mu.Unlock()

	fmt.Fprintln(w, "=== Results ===")
	fmt.Fprintf(w, "Total Requests:  %d\n", stats.total)
	fmt.Fprintf(w, "Successful:      %d\n", stats.total-stats.failed)
	fmt.Fprintf(w, "Errors:          %d\n", stats.failed)
	if stats.total > 0 {
		fmt.Fprintf(w, "Error Rate:      %.2f%%\n", float64(stats.failed)/float64(stats.total)*100)
		fmt.Fprintf(w, "Requests/sec:    %.2f\n", float64(stats.total)/duration.Seconds())
	}

	if len(stats.latencies) > 0 {
		latencies := make([]time.Duration, len(stats.latencies))
		copy(latencies, stats.latencies)
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Latency ===")
		fmt.Fprintf(w, "Min:    %s\n", latencies[0])
		fmt.Fprintf(w, "Avg:    %s\n", sum/time.Duration(len(latencies)))
		fmt.Fprintf(w, "P50:    %s\n", latencyPercentile(latencies, 50))
		fmt.Fprintf(w, "P95:    %s\n", latencyPercentile(latencies, 95))
		fmt.Fprintf(w, "P99:    %s\n", latencyPercentile(latencies, 99))
		fmt.Fprintf(w, "Max:    %s\n", latencies[len(latencies)-1])
	}

	codes := make([]int, 0, len(stats.statusCodes))
	for code := range stats.statusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Status Codes ===")
	for _, code := range codes {
		fmt.Fprintf(w, "  %d: %d\n", code, stats.statusCodes[code])
	}
}

func latencyPercentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
