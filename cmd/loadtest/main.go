// Command loadtest drives GET /api/fetchEvents at a fixed rate with vegeta and
// prints latency and status code statistics.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

func main() {
	base := flag.String("base", "http://localhost:8080", "API base URL")
	path := flag.String("path", "/api/fetchEvents", "endpoint to hit")
	rate := flag.Int("rate", 20, "requests per second")
	duration := flag.Duration("duration", 10*time.Second, "test duration")
	timeout := flag.Duration("timeout", 15*time.Second, "per request timeout")
	cookie := flag.String("cookie", "", "optional Cookie header, e.g. sid=...")
	flag.Parse()

	target := vegeta.Target{
		Method: http.MethodGet,
		URL:    strings.TrimRight(*base, "/") + *path,
		Header: http.Header{"Accept": []string{"application/json"}},
	}
	if *cookie != "" {
		target.Header.Set("Cookie", *cookie)
	}

	attacker := vegeta.NewAttacker(vegeta.Timeout(*timeout))
	pacer := vegeta.Rate{Freq: *rate, Per: time.Second}

	var metrics vegeta.Metrics
	for res := range attacker.Attack(vegeta.NewStaticTargeter(target), pacer, *duration, "fetchEvents") {
		metrics.Add(res)
	}
	metrics.Close()

	fmt.Printf("requests: %d  success: %.2f%%  throughput: %.2f/s\n",
		metrics.Requests, metrics.Success*100, metrics.Throughput)
	fmt.Printf("latency p50=%s p95=%s p99=%s max=%s\n",
		metrics.Latencies.P50, metrics.Latencies.P95, metrics.Latencies.P99, metrics.Latencies.Max)
	fmt.Printf("status codes: %v\n", metrics.StatusCodes)
	if len(metrics.Errors) > 0 {
		log.Printf("errors: %s", strings.Join(metrics.Errors, "; "))
	}
	if metrics.Success < 1 {
		os.Exit(1)
	}
}
