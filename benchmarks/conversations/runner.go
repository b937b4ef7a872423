// ABOUTME: Runner for conversation benchmarks - executes scenarios and collects results
// ABOUTME: Drives each scenario through the orchestrator on fresh in-memory storage
package conversations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/audit"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/core"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/models"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/storage/sqlite"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/tools"
)

// benchmarkUser owns every scenario's data
const benchmarkUser = "benchmark"

// BenchmarkRunner executes conversation scenarios
type BenchmarkRunner struct {
	metrics *MetricsCalculator
	out     io.Writer
	verbose bool
	log     logrus.FieldLogger
}

// NewBenchmarkRunner creates a runner. Progress goes to out when verbose is set.
func NewBenchmarkRunner(out io.Writer, verbose bool) *BenchmarkRunner {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &BenchmarkRunner{
		metrics: NewMetricsCalculator(),
		out:     out,
		verbose: verbose,
		log:     log,
	}
}

// RunTest executes a single scenario on its own database
func (r *BenchmarkRunner) RunTest(ctx context.Context, scenario TestScenario) (TestResult, error) {
	if r.verbose {
		fmt.Fprintf(r.out, "\n========================================\n")
		fmt.Fprintf(r.out, "RUNNING: %s\n", scenario.Name)
		fmt.Fprintf(r.out, "========================================\n")
		fmt.Fprintf(r.out, "Description: %s\n\n", scenario.Description)
	}

	store, err := sqlite.NewStorageInMemory(sqlite.WithLogger(r.log))
	if err != nil {
		return TestResult{}, fmt.Errorf("failed to create test storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	o := core.NewOrchestrator(store, audit.New(tools.NewRegistry(), audit.WithLogger(r.log)), r.log)

	var convID string
	var final *core.TurnResponse
	for i, message := range scenario.Turns {
		if r.verbose {
			fmt.Fprintf(r.out, "[Turn %d] User: %s\n", i+1, message)
		}

		resp, err := o.ProcessTurn(ctx, core.TurnRequest{UserID: benchmarkUser, ConversationID: convID, Message: message})
		if err != nil {
			return TestResult{}, fmt.Errorf("turn %d failed: %w", i+1, err)
		}
		convID = resp.ConversationID
		final = resp

		if r.verbose {
			fmt.Fprintf(r.out, "[Turn %d] Assistant: %s\n\n", i+1, resp.Response)
		}
	}
	if final == nil {
		return TestResult{}, fmt.Errorf("scenario %s has no turns", scenario.ID)
	}

	finalTools := make([]string, 0, len(final.ToolInvocations))
	for _, inv := range final.ToolInvocations {
		finalTools = append(finalTools, inv.ToolName)
	}

	todos, err := allTodos(ctx, store)
	if err != nil {
		return TestResult{}, err
	}

	result := r.metrics.EvaluateTest(scenario, final.Response, finalTools, todos)

	if r.verbose {
		fmt.Fprintf(r.out, "Faithfulness: %.2f\n", result.FaithfulnessScore)
		fmt.Fprintf(r.out, "Tool Calls: %.2f\n", result.ToolScore)
		fmt.Fprintf(r.out, "State Recall: %.2f\n", result.StateRecallScore)
		fmt.Fprintf(r.out, "Status: %s\n", result.Status)
	}

	return result, nil
}

// allTodos lists the benchmark user's todos in every status
func allTodos(ctx context.Context, store *sqlite.Storage) ([]models.Todo, error) {
	var todos []models.Todo
	for _, status := range models.TodoStatuses {
		batch, err := store.Todos().List(ctx, benchmarkUser, sqlite.TodoFilter{Status: status})
		if err != nil {
			return nil, fmt.Errorf("listing %s todos: %w", status, err)
		}
		todos = append(todos, batch...)
	}
	return todos, nil
}

// RunAllTests executes every scenario
func (r *BenchmarkRunner) RunAllTests(ctx context.Context) ([]TestResult, error) {
	scenarios := GetAllTests()
	results := make([]TestResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		result, err := r.RunTest(ctx, scenario)
		if err != nil {
			return results, fmt.Errorf("test %s failed: %w", scenario.ID, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// ExportResults writes results as JSON to outputPath
func (r *BenchmarkRunner) ExportResults(results []TestResult, outputPath string) error {
	passed := 0
	for _, result := range results {
		if result.Status == "PASS" {
			passed++
		}
	}

	report := map[string]interface{}{
		"total":   len(results),
		"passed":  passed,
		"failed":  len(results) - passed,
		"results": results,
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	if r.verbose {
		fmt.Fprintf(r.out, "Results exported to: %s\n", outputPath)
	}
	return nil
}
