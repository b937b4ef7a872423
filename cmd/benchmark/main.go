// ABOUTME: Command-line benchmark runner for conversation scenarios
// ABOUTME: Replays scripted chats through the orchestrator and outputs JSON results

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/AiWithAadil/spec-driven-todo-ai/benchmarks/conversations"
)

func main() {
	testID := flag.String("test", "", fmt.Sprintf("Run specific test (%s). If empty, runs all tests.", strings.Join(conversations.TestIDs(), ", ")))
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	fmt.Println("========================================")
	fmt.Println("Todo Assistant Conversation Benchmarks")
	fmt.Println("========================================")
	fmt.Println()

	runner := conversations.NewBenchmarkRunner(os.Stdout, *verbose)
	ctx := context.Background()

	var results []conversations.TestResult
	var err error

	if *testID == "" {
		fmt.Println("Running all conversation benchmark tests...")
		fmt.Println()

		results, err = runner.RunAllTests(ctx)
		if err != nil {
			log.Fatalf("Benchmark failed: %v", err)
		}
	} else {
		scenario, ok := conversations.GetTestByID(*testID)
		if !ok {
			log.Fatalf("Unknown test ID: %s (valid options: %s)", *testID, strings.Join(conversations.TestIDs(), ", "))
		}

		fmt.Printf("Running test: %s\n\n", scenario.Name)

		result, err := runner.RunTest(ctx, scenario)
		if err != nil {
			log.Fatalf("Test failed: %v", err)
		}

		results = []conversations.TestResult{result}
	}

	fmt.Println("\n========================================")
	fmt.Println("BENCHMARK SUMMARY")
	fmt.Println("========================================")

	passed := 0
	failed := 0

	for _, result := range results {
		fmt.Printf("\n%s: %s\n", result.TestID, result.TestName)
		fmt.Printf("  Faithfulness: %.2f\n", result.FaithfulnessScore)
		fmt.Printf("  Tool Calls: %.2f\n", result.ToolScore)
		fmt.Printf("  State Recall: %.2f\n", result.StateRecallScore)
		fmt.Printf("  Overall: %.2f\n", result.OverallScore)
		fmt.Printf("  Status: %s\n", result.Status)

		if result.Status == "PASS" {
			passed++
		} else {
			failed++
		}
	}

	fmt.Println("\n========================================")
	fmt.Printf("Total Tests: %d\n", len(results))
	fmt.Printf("Passed: %d\n", passed)
	fmt.Printf("Failed: %d\n", failed)
	fmt.Println("========================================")

	if err := runner.ExportResults(results, *outputPath); err != nil {
		log.Fatalf("Failed to export results: %v", err)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
