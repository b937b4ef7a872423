// ABOUTME: Declared parameter and result schemas for tools
// ABOUTME: Validates call arguments and result envelopes generically, once per call
package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/chaterr"
)

// ParamType is the declared type of a tool parameter
type ParamType string

const (
	// TypeString is a JSON string
	TypeString ParamType = "string"
	// TypeID is a positive integer identifier given as a JSON number or decimal string
	TypeID ParamType = "id"
)

// Param declares one tool parameter
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	NonBlank    bool     // reject whitespace-only strings
	Enum        []string // allowed values, matched case-insensitively
	MaxLength   int      // in characters; 0 means unbounded
	Default     string
}

// ResultContract lists the envelope fields a tool must return
type ResultContract struct {
	Always    []string // required on every result
	OnSuccess []string // additionally required when success is true
}

// baseFields are required in every tool result
var baseFields = []string{FieldSuccess, FieldError}

// Args holds validated, normalized arguments
type Args map[string]interface{}

// String returns a string argument and whether it was supplied
func (a Args) String(name string) (string, bool) {
	v, ok := a[name].(string)
	return v, ok
}

// ID returns an identifier argument, or 0 when absent
func (a Args) ID(name string) int64 {
	v, _ := a[name].(int64)
	return v
}

func validateArgs(op string, params []Param, raw map[string]interface{}) (Args, error) {
	args := Args{}
	for _, p := range params {
		v, present := raw[p.Name]
		if !present || v == nil {
			if p.Required {
				return nil, chaterr.Newf(chaterr.KindValidation, op, "%s is required", p.Name)
			}
			if p.Default != "" {
				args[p.Name] = p.Default
			}
			continue
		}

		switch p.Type {
		case TypeID:
			id, err := parseID(v)
			if err != nil {
				return nil, chaterr.Newf(chaterr.KindValidation, op, "invalid %s format: %v", p.Name, v)
			}
			args[p.Name] = id
		case TypeString:
			s, ok := v.(string)
			if !ok {
				return nil, chaterr.Newf(chaterr.KindValidation, op, "%s must be a string", p.Name)
			}
			if p.NonBlank && strings.TrimSpace(s) == "" {
				return nil, chaterr.Newf(chaterr.KindValidation, op, "%s is required and must be non-empty", p.Name)
			}
			if p.MaxLength > 0 && utf8.RuneCountInString(strings.TrimSpace(s)) > p.MaxLength {
				return nil, chaterr.Newf(chaterr.KindValidation, op, "%s exceeds %d characters", p.Name, p.MaxLength)
			}
			if len(p.Enum) > 0 {
				norm, ok := matchEnum(p.Enum, s)
				if !ok {
					return nil, chaterr.Newf(chaterr.KindValidation, op, "invalid %s value: %s", p.Name, s)
				}
				s = norm
			}
			args[p.Name] = s
		default:
			return nil, chaterr.Newf(chaterr.KindTool, op, "parameter %s has unknown type %q", p.Name, p.Type)
		}
	}
	return args, nil
}

func matchEnum(allowed []string, v string) (string, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if a == v {
			return a, true
		}
	}
	return "", false
}

// parseID accepts positive integers from JSON numbers or decimal strings
func parseID(v interface{}) (int64, error) {
	var id int64
	switch n := v.(type) {
	case int:
		id = int64(n)
	case int64:
		id = n
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt64 {
			return 0, fmt.Errorf("not an integer")
		}
		id = int64(n)
	case json.Number:
		parsed, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			return 0, err
		}
		id = parsed
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, err
		}
		id = parsed
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive")
	}
	return id, nil
}

// CheckResult verifies a raw result against the tool's declared contract.
// A violation is a ToolKind error, distinct from a business failure result.
func (t *Tool) CheckResult(r Result) error {
	op := "tools." + t.Name
	if r == nil {
		return chaterr.New(chaterr.KindTool, op, "result is nil")
	}

	required := append(append([]string{}, baseFields...), t.Result.Always...)
	for _, field := range required {
		if _, ok := r[field]; !ok {
			return chaterr.Newf(chaterr.KindTool, op, "result missing %q field", field)
		}
	}

	success, ok := r[FieldSuccess].(bool)
	if !ok {
		return chaterr.Newf(chaterr.KindTool, op, "%q must be a boolean", FieldSuccess)
	}
	if e := r[FieldError]; e != nil {
		if _, ok := e.(string); !ok {
			return chaterr.Newf(chaterr.KindTool, op, "%q must be a string or null", FieldError)
		}
	}

	if success {
		for _, field := range t.Result.OnSuccess {
			if v, ok := r[field]; !ok || v == nil {
				return chaterr.Newf(chaterr.KindTool, op, "successful result missing %q field", field)
			}
		}
	}
	return nil
}
