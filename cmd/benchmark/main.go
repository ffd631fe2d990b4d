// Benchmark tool for load-testing PropClear audits.
//
// Usage:
//   go run cmd/benchmark/main.go -url http://localhost:8080 -count 1000
//
// This tool:
//   1. Generates synthetic property submissions across Indian metros
//   2. Sends each one to PropClear for a comprehensive audit
//   3. Tracks latency, throughput, and the risk-level distribution
//   4. Reports how often audits end in manual review
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// PropertyRequest matches the PropClear POST /properties body.
type PropertyRequest struct {
	PropertyName    string `json:"propertyName"`
	Address         string `json:"address"`
	City            string `json:"city"`
	State           string `json:"state"`
	Pincode         string `json:"pincode"`
	PropertyType    string `json:"propertyType"`
	TransactionType string `json:"transactionType"`
	EstimatedValue  string `json:"estimatedValue"`
	Area            string `json:"area"`
	OwnerName       string `json:"ownerName"`
	UserID          string `json:"userId"`
}

// AuditResponse is the slice of the PropClear response the tool reads.
type AuditResponse struct {
	Property struct {
		ID string `json:"id"`
	} `json:"property"`
	AuditResults struct {
		OverallRiskScore int    `json:"overallRiskScore"`
		RiskLevel        string `json:"riskLevel"`
		LitigationCount  int    `json:"litigationCount"`
	} `json:"auditResults"`
	Audit struct {
		FraudScore struct {
			Recommendation string   `json:"recommendation"`
			Flags          []string `json:"flags"`
		} `json:"fraudScore"`
	} `json:"audit"`
}

// Metrics tracks benchmark results.
type Metrics struct {
	TotalProcessed int64
	TotalErrors    int64

	LowRisk    int64
	MediumRisk int64
	HighRisk   int64

	ManualReviews  int64
	WithLitigation int64
	WithFlags      int64

	ScoreSum         int64
	ProcessingTimeMs int64
}

var cities = []struct {
	City    string
	State   string
	Pincode string
}{
	{"Pune", "Maharashtra", "411001"},
	{"Mumbai", "Maharashtra", "400001"},
	{"Bengaluru", "Karnataka", "560001"},
	{"Hyderabad", "Telangana", "500001"},
	{"Chennai", "Tamil Nadu", "600001"},
	{"Gurugram", "Haryana", "122001"},
}

var propertyTypes = []string{"APARTMENT", "VILLA", "PLOT", "LAND", "COMMERCIAL"}

var ownerNames = []string{
	"Ramesh Kumar", "Anita Shah", "Suresh Patil",
	"Priya Nair", "Vikram Reddy", "Meena Iyer",
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "PropClear base URL")
	count := flag.Int("count", 1000, "Number of submissions to send")
	workers := flag.Int("workers", 10, "Number of concurrent workers")
	seed := flag.Int64("seed", 1, "Seed for the submission generator")
	verbose := flag.Bool("verbose", false, "Print each audit result")
	flag.Parse()

	fmt.Println("╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║           PROPCLEAR BENCHMARK - Audit Load Generator          ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")
	fmt.Printf("\nPropClear URL: %s\n", *baseURL)
	fmt.Printf("Submissions:   %d\n", *count)
	fmt.Printf("Workers:       %d\n", *workers)
	fmt.Printf("Seed:          %d\n", *seed)
	fmt.Println()

	if err := checkHealth(*baseURL); err != nil {
		fmt.Printf("ERROR: PropClear not reachable at %s: %v\n", *baseURL, err)
		fmt.Println("\nMake sure PropClear is running:")
		fmt.Println("  go run cmd/propclear/main.go")
		os.Exit(1)
	}
	fmt.Println("✓ PropClear is healthy")

	submissions := generateSubmissions(*count, *seed)
	fmt.Printf("✓ Generated %d submissions across %d cities\n", len(submissions), len(cities))

	fmt.Printf("\nRunning benchmark with %d workers...\n", *workers)
	startTime := time.Now()
	metrics := runBenchmark(submissions, *baseURL, *workers, *verbose)
	duration := time.Since(startTime)

	printResults(metrics, duration)
}

func checkHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func generateSubmissions(count int, seed int64) []PropertyRequest {
	rng := rand.New(rand.NewSource(seed))

	submissions := make([]PropertyRequest, 0, count)
	for i := 0; i < count; i++ {
		loc := cities[rng.Intn(len(cities))]
		value := 2_000_000 + rng.Intn(48_000_000)
		area := 400 + rng.Intn(4600)

		submissions = append(submissions, PropertyRequest{
			PropertyName:    fmt.Sprintf("Benchmark Property %05d", i+1),
			Address:         fmt.Sprintf("%d Test Lane", i+1),
			City:            loc.City,
			State:           loc.State,
			Pincode:         loc.Pincode,
			PropertyType:    propertyTypes[rng.Intn(len(propertyTypes))],
			TransactionType: "buy",
			EstimatedValue:  fmt.Sprintf("%d", value),
			Area:            fmt.Sprintf("%d", area),
			OwnerName:       ownerNames[rng.Intn(len(ownerNames))],
			UserID:          fmt.Sprintf("bench-user-%03d", rng.Intn(100)),
		})
	}
	return submissions
}

func runBenchmark(submissions []PropertyRequest, baseURL string, numWorkers int, verbose bool) *Metrics {
	metrics := &Metrics{}

	work := make(chan PropertyRequest, 100)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{Timeout: 10 * time.Second}

			for sub := range work {
				start := time.Now()
				result, err := submitProperty(client, baseURL, sub)
				elapsed := time.Since(start).Milliseconds()

				atomic.AddInt64(&metrics.ProcessingTimeMs, elapsed)
				atomic.AddInt64(&metrics.TotalProcessed, 1)

				if err != nil {
					atomic.AddInt64(&metrics.TotalErrors, 1)
					if verbose {
						fmt.Printf("ERROR: %s -> %v\n", sub.PropertyName, err)
					}
					continue
				}

				ar := result.AuditResults
				atomic.AddInt64(&metrics.ScoreSum, int64(ar.OverallRiskScore))

				switch ar.RiskLevel {
				case "high":
					atomic.AddInt64(&metrics.HighRisk, 1)
				case "medium":
					atomic.AddInt64(&metrics.MediumRisk, 1)
				default:
					atomic.AddInt64(&metrics.LowRisk, 1)
				}

				if result.Audit.FraudScore.Recommendation == "High risk - Manual review required" {
					atomic.AddInt64(&metrics.ManualReviews, 1)
				}
				if ar.LitigationCount > 0 {
					atomic.AddInt64(&metrics.WithLitigation, 1)
				}
				if len(result.Audit.FraudScore.Flags) > 0 {
					atomic.AddInt64(&metrics.WithFlags, 1)
				}

				if verbose {
					fmt.Printf("  %-26s | %-10s | Score: %3d | Risk: %-6s | Litigation: %d | Flags: %d\n",
						sub.PropertyName,
						sub.City,
						ar.OverallRiskScore,
						ar.RiskLevel,
						ar.LitigationCount,
						len(result.Audit.FraudScore.Flags),
					)
				}
			}
		}()
	}

	for _, sub := range submissions {
		work <- sub
	}
	close(work)

	wg.Wait()

	return metrics
}

func submitProperty(client *http.Client, baseURL string, sub PropertyRequest) (*AuditResponse, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, baseURL+"/properties", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var result AuditResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

func printResults(m *Metrics, duration time.Duration) {
	fmt.Println("\n╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                      BENCHMARK RESULTS                        ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")

	fmt.Printf("\n📊 AUDIT STATISTICS\n")
	fmt.Printf("   Total Processed:  %d\n", m.TotalProcessed)
	fmt.Printf("   Errors:           %d\n", m.TotalErrors)

	succeeded := m.TotalProcessed - m.TotalErrors
	if succeeded > 0 {
		fmt.Printf("\n📈 RISK DISTRIBUTION\n")
		fmt.Printf("   Low:     %6d (%.2f%%)\n", m.LowRisk, pct(m.LowRisk, succeeded))
		fmt.Printf("   Medium:  %6d (%.2f%%)\n", m.MediumRisk, pct(m.MediumRisk, succeeded))
		fmt.Printf("   High:    %6d (%.2f%%)\n", m.HighRisk, pct(m.HighRisk, succeeded))

		fmt.Printf("\n🔍 AUDIT OUTCOMES\n")
		fmt.Printf("   Avg Fraud Score:   %.1f\n", float64(m.ScoreSum)/float64(succeeded))
		fmt.Printf("   Manual Reviews:    %d / %d (%.2f%%)\n", m.ManualReviews, succeeded, pct(m.ManualReviews, succeeded))
		fmt.Printf("   With Litigation:   %d / %d (%.2f%%)\n", m.WithLitigation, succeeded, pct(m.WithLitigation, succeeded))
		fmt.Printf("   With Fraud Flags:  %d / %d (%.2f%%)\n", m.WithFlags, succeeded, pct(m.WithFlags, succeeded))
	}

	fmt.Printf("\n⏱️  PERFORMANCE\n")
	fmt.Printf("   Total Duration:   %v\n", duration.Round(time.Millisecond))
	if m.TotalProcessed > 0 {
		avgMs := float64(m.ProcessingTimeMs) / float64(m.TotalProcessed)
		aps := float64(m.TotalProcessed) / duration.Seconds()
		fmt.Printf("   Avg Latency:      %.2f ms\n", avgMs)
		fmt.Printf("   Throughput:       %.2f audits/sec\n", aps)
	}

	fmt.Println()
}

func pct(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}
