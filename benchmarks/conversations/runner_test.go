// ABOUTME: Tests for the conversation benchmark runner and metrics
// ABOUTME: Every built-in scenario must pass against the real orchestrator
package conversations

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/models"
)

func TestRunAllTests_AllPass(t *testing.T) {
	var out bytes.Buffer
	runner := NewBenchmarkRunner(&out, true)

	results, err := runner.RunAllTests(context.Background())
	if err != nil {
		t.Fatalf("RunAllTests() error = %v", err)
	}
	if len(results) != len(GetAllTests()) {
		t.Fatalf("results = %d, want %d", len(results), len(GetAllTests()))
	}
	for _, r := range results {
		if r.Status != "PASS" {
			t.Errorf("%s: %s (details %v)", r.TestID, r.Status, r.Details)
		}
	}
	if !strings.Contains(out.String(), "[Turn 1] User:") {
		t.Error("verbose output missing turn transcript")
	}
}

func TestRunTest_NoTurns(t *testing.T) {
	runner := NewBenchmarkRunner(&bytes.Buffer{}, false)
	if _, err := runner.RunTest(context.Background(), TestScenario{ID: "empty"}); err == nil {
		t.Error("RunTest() with no turns: expected error")
	}
}

func TestCalculateFaithfulness(t *testing.T) {
	m := NewMetricsCalculator()

	tests := []struct {
		name      string
		response  string
		expected  []string
		forbidden []string
		want      float64
	}{
		{"perfect", "Here are your todos: milk", []string{"MILK"}, []string{"eggs"}, 1.0},
		{"missing", "nothing", []string{"milk"}, nil, 0.5},
		{"forbidden", "milk and eggs", []string{"milk"}, []string{"eggs"}, 0.5},
		{"both", "eggs", []string{"milk"}, []string{"eggs"}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := m.CalculateFaithfulness(tt.response, tt.expected, tt.forbidden); got != tt.want {
				t.Errorf("CalculateFaithfulness() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateStateRecall(t *testing.T) {
	m := NewMetricsCalculator()
	actual := []models.Todo{
		{Title: "a", Status: models.TodoOpen},
		{Title: "b", Status: models.TodoCompleted},
	}

	if got, _ := m.CalculateStateRecall(actual, []ExpectedTodo{{"a", models.TodoOpen}, {"b", models.TodoCompleted}}); got != 1.0 {
		t.Errorf("exact match = %v, want 1.0", got)
	}
	if got, _ := m.CalculateStateRecall(actual, []ExpectedTodo{{"a", models.TodoOpen}}); got != 0.5 {
		t.Errorf("extra todo = %v, want 0.5", got)
	}
	if got, _ := m.CalculateStateRecall(actual, []ExpectedTodo{{"a", models.TodoCompleted}, {"b", models.TodoCompleted}}); got != 0.5 {
		t.Errorf("wrong status = %v, want 0.5", got)
	}
	if got, _ := m.CalculateStateRecall(nil, nil); got != 1.0 {
		t.Errorf("empty = %v, want 1.0", got)
	}
}

func TestCalculateToolScore(t *testing.T) {
	m := NewMetricsCalculator()
	if got, _ := m.CalculateToolScore([]string{"read_todos", "delete_todo"}, []string{"read_todos", "delete_todo"}); got != 1.0 {
		t.Errorf("match = %v, want 1.0", got)
	}
	if got, _ := m.CalculateToolScore([]string{"delete_todo", "read_todos"}, []string{"read_todos", "delete_todo"}); got != 0.0 {
		t.Errorf("order mismatch = %v, want 0.0", got)
	}
}

func TestExportResults(t *testing.T) {
	runner := NewBenchmarkRunner(&bytes.Buffer{}, false)
	path := filepath.Join(t.TempDir(), "results.json")

	results := []TestResult{{TestID: "x", Status: "PASS"}, {TestID: "y", Status: "FAIL"}}
	if err := runner.ExportResults(results, path); err != nil {
		t.Fatalf("ExportResults() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var report struct {
		Total  int `json:"total"`
		Passed int `json:"passed"`
		Failed int `json:"failed"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	if report.Total != 2 || report.Passed != 1 || report.Failed != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestGetTestByID(t *testing.T) {
	for _, id := range TestIDs() {
		if s, ok := GetTestByID(id); !ok || s.ID != id {
			t.Errorf("GetTestByID(%q) = %v, %v", id, s.ID, ok)
		}
	}
	if _, ok := GetTestByID("nope"); ok {
		t.Error("GetTestByID(nope) should not be found")
	}
}
