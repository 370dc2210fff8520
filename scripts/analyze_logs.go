package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

type LogStats struct {
	TotalErrors     int
	IntentSuccess   int
	IntentFailures  int
	RetryAttempts   int
	ZohoUnavailable int
	ConfigMissing   int
	FallbackOrders  int
	FailureCodes    map[string]int
	ErrorPatterns   map[string]int
}

func main() {
	today := time.Now().Format("2006-01-02")
	logDir := "./logs"

	stats := &LogStats{
		FailureCodes:  make(map[string]int),
		ErrorPatterns: make(map[string]int),
	}

	analyzeErrorLogs(filepath.Join(logDir, fmt.Sprintf("error-%s.log", today)), stats)
	analyzeInfoLogs(filepath.Join(logDir, fmt.Sprintf("info-%s.log", today)), stats)

	printReport(stats)
}

var codeRegex = regexp.MustCompile(`code=([A-Z_]+)`)

func analyzeErrorLogs(logFile string, stats *LogStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		stats.TotalErrors++

		if strings.Contains(line, "Payment intent failed") {
			stats.IntentFailures++
			if code := codeRegex.FindStringSubmatch(line); len(code) > 1 {
				stats.FailureCodes[code[1]]++
			}
		}
		if strings.Contains(line, "Invoice attempt") {
			stats.RetryAttempts++
		}
		if strings.Contains(line, "ZOHO_UNAVAILABLE") || strings.Contains(line, "unreachable") {
			stats.ZohoUnavailable++
		}
		if strings.Contains(line, "configuration incomplete") {
			stats.ConfigMissing++
		}

		extractErrorPattern(line, stats)
	}
}

func analyzeInfoLogs(logFile string, stats *LogStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.Contains(line, "Payment intent ready") {
			stats.IntentSuccess++
		}
		if strings.Contains(line, "Created pending email order") ||
			strings.Contains(line, "Created pending bank_transfer order") {
			stats.FallbackOrders++
		}
	}
}

func extractErrorPattern(line string, stats *LogStats) {
	parts := strings.Split(line, ":")
	if len(parts) > 1 {
		errorMsg := strings.TrimSpace(parts[1])
		stats.ErrorPatterns[errorMsg]++
	}
}

func printReport(stats *LogStats) {
	fmt.Println("\n=== Payment Log Analysis Report ===")
	fmt.Println("Generated:", time.Now().Format("2006-01-02 15:04:05"))

	fmt.Println("\n1. Payment Intent Statistics:")
	fmt.Printf("   Successful Intents: %d\n", stats.IntentSuccess)
	fmt.Printf("   Failed Intents: %d\n", stats.IntentFailures)
	fmt.Printf("   Retry Attempts: %d\n", stats.RetryAttempts)
	fmt.Printf("   Fallback Channel Orders: %d\n", stats.FallbackOrders)

	fmt.Println("\n2. Provider Availability:")
	fmt.Printf("   Provider Unreachable Events: %d\n", stats.ZohoUnavailable)
	fmt.Printf("   Missing Configuration Events: %d\n", stats.ConfigMissing)

	fmt.Println("\n3. Error Statistics:")
	fmt.Printf("   Total Errors: %d\n", stats.TotalErrors)

	fmt.Println("\n4. Failure Codes:")
	printTopCounts(stats.FailureCodes, 10)

	fmt.Println("\n5. Most Common Errors:")
	printTopCounts(stats.ErrorPatterns, 5)
}

func printTopCounts(counts map[string]int, limit int) {
	type entry struct {
		key   string
		count int
	}

	var entries []entry
	for k, c := range counts {
		entries = append(entries, entry{k, c})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].count > entries[j].count
	})

	for i, e := range entries {
		if i >= limit {
			break
		}
		fmt.Printf("   %s: %d occurrences\n", e.key, e.count)
	}
}
