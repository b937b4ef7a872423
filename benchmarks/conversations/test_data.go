// ABOUTME: Scenario data structures for conversation benchmarks
// ABOUTME: Defines conversation turns, expected replies, tool calls, and final todo state
package conversations

import "github.com/AiWithAadil/spec-driven-todo-ai/internal/models"

// TestScenario represents a complete benchmark conversation
type TestScenario struct {
	ID          string
	Name        string
	Description string
	Turns       []string
	GroundTruth GroundTruth
}

// GroundTruth defines expected outcomes for a scenario
type GroundTruth struct {
	// Checked against the reply of the last turn
	ExpectedInResponse  []string
	ForbiddenInResponse []string

	// Tool calls the last turn must make, in order
	ExpectedTools []string

	// Every todo that must exist afterwards, archived ones included
	ExpectedTodos []ExpectedTodo
}

// ExpectedTodo is a todo that should exist after the conversation
type ExpectedTodo struct {
	Title  string
	Status models.TodoStatus
}

// TestResult contains scores for a benchmark run
type TestResult struct {
	TestID            string                 `json:"test_id"`
	TestName          string                 `json:"test_name"`
	FaithfulnessScore float64                `json:"faithfulness_score"`
	ToolScore         float64                `json:"tool_score"`
	StateRecallScore  float64                `json:"state_recall_score"`
	OverallScore      float64                `json:"overall_score"`
	Status            string                 `json:"status"`
	Details           map[string]interface{} `json:"details"`
}

// GetCreateAndComplete adds two todos, completes one, and lists them
func GetCreateAndComplete() TestScenario {
	return TestScenario{
		ID:          "create",
		Name:        "Create, complete, and list",
		Description: "Titles are extracted from natural phrasing and status changes show up in the list",
		Turns: []string{
			"Create a todo to buy groceries",
			"add water plants",
			"mark buy groceries as done",
			"show my todos",
		},
		GroundTruth: GroundTruth{
			ExpectedInResponse: []string{"buy groceries (completed)", "water plants (open)"},
			ExpectedTools:      []string{"read_todos"},
			ExpectedTodos: []ExpectedTodo{
				{Title: "buy groceries", Status: models.TodoCompleted},
				{Title: "water plants", Status: models.TodoOpen},
			},
		},
	}
}

// GetBulkDeleteGuard asks to delete everything, which must only ask for confirmation
func GetBulkDeleteGuard() TestScenario {
	return TestScenario{
		ID:          "bulk",
		Name:        "Bulk delete needs confirmation",
		Description: "A request to delete all todos is intercepted before any tool runs",
		Turns: []string{
			"add one",
			"add two",
			"Delete all my todos",
		},
		GroundTruth: GroundTruth{
			ExpectedInResponse:  []string{"Are you sure"},
			ForbiddenInResponse: []string{"Deleted"},
			ExpectedTools:       []string{},
			ExpectedTodos: []ExpectedTodo{
				{Title: "one", Status: models.TodoOpen},
				{Title: "two", Status: models.TodoOpen},
			},
		},
	}
}

// GetOutOfScope sends a request the assistant must decline
func GetOutOfScope() TestScenario {
	return TestScenario{
		ID:          "scope",
		Name:        "Out-of-scope request declined",
		Description: "Block-listed requests get the fixed decline text and touch nothing",
		Turns:       []string{"send email to my boss"},
		GroundTruth: GroundTruth{
			ExpectedInResponse: []string{"I'm a todo assistant"},
			ExpectedTools:      []string{},
		},
	}
}

// GetTypoSuggestion deletes a misspelled title
func GetTypoSuggestion() TestScenario {
	return TestScenario{
		ID:          "typo",
		Name:        "Misspelled title gets a suggestion",
		Description: "Matching stays exact; the reply suggests the closest existing title",
		Turns: []string{
			"add water plants",
			"delete watr plants",
		},
		GroundTruth: GroundTruth{
			ExpectedInResponse:  []string{"not found", "Did you mean 'water plants'?"},
			ForbiddenInResponse: []string{"Deleted"},
			ExpectedTools:       []string{"read_todos"},
			ExpectedTodos: []ExpectedTodo{
				{Title: "water plants", Status: models.TodoOpen},
			},
		},
	}
}

// GetDeleteThenList deletes one todo and checks it is hidden from the list
func GetDeleteThenList() TestScenario {
	return TestScenario{
		ID:          "delete",
		Name:        "Deleted todos are archived and hidden",
		Description: "Deletion is a soft delete: the row survives as archived but is not listed",
		Turns: []string{
			"add pay rent",
			"add walk dog",
			"delete pay rent",
			"show my todos",
		},
		GroundTruth: GroundTruth{
			ExpectedInResponse:  []string{"walk dog"},
			ForbiddenInResponse: []string{"pay rent"},
			ExpectedTools:       []string{"read_todos"},
			ExpectedTodos: []ExpectedTodo{
				{Title: "pay rent", Status: models.TodoArchived},
				{Title: "walk dog", Status: models.TodoOpen},
			},
		},
	}
}

// GetAllTests returns every scenario
func GetAllTests() []TestScenario {
	return []TestScenario{
		GetCreateAndComplete(),
		GetBulkDeleteGuard(),
		GetOutOfScope(),
		GetTypoSuggestion(),
		GetDeleteThenList(),
	}
}

// GetTestByID looks up a scenario by its ID
func GetTestByID(id string) (TestScenario, bool) {
	for _, s := range GetAllTests() {
		if s.ID == id {
			return s, true
		}
	}
	return TestScenario{}, false
}

// TestIDs lists every scenario ID
func TestIDs() []string {
	all := GetAllTests()
	ids := make([]string, len(all))
	for i, s := range all {
		ids[i] = s.ID
	}
	return ids
}
