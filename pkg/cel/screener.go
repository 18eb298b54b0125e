// Package cel evaluates screening rules against contact submissions.
package cel

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"
)

type Rule struct {
	Name       string
	Expression string
}

// Fields are the values a screening expression can reference.
type Fields struct {
	Name         string
	Email        string
	Phone        string
	Organization string
	Message      string
}

type compiledRule struct {
	name    string
	program cel.Program
}

// Screener holds rules compiled once at startup.
type Screener struct {
	rules []compiledRule
}

func newEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("name", cel.StringType),
		cel.Variable("email", cel.StringType),
		cel.Variable("phone", cel.StringType),
		cel.Variable("organization", cel.StringType),
		cel.Variable("message", cel.StringType),
		ext.Strings(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

func NewScreener(rules []Rule) (*Screener, error) {
	env, err := newEnv()
	if err != nil {
		return nil, err
	}

	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		ast, issues := env.Compile(r.Expression)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("rule %q: failed to compile CEL expression: %w", r.Name, issues.Err())
		}

		if ast.OutputType() != cel.BoolType {
			return nil, fmt.Errorf("rule %q: expression must return bool, got %v", r.Name, ast.OutputType())
		}

		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("rule %q: failed to create CEL program: %w", r.Name, err)
		}

		compiled = append(compiled, compiledRule{name: r.Name, program: program})
	}

	return &Screener{rules: compiled}, nil
}

func (s *Screener) Len() int {
	return len(s.rules)
}

// Screen returns the names of every rule that matched, in rule order. An
// evaluation error on one rule is collected and the remaining rules still run.
func (s *Screener) Screen(ctx context.Context, f Fields) ([]string, error) {
	if len(s.rules) == 0 {
		return nil, nil
	}

	vars := map[string]interface{}{
		"name":         f.Name,
		"email":        f.Email,
		"phone":        f.Phone,
		"organization": f.Organization,
		"message":      f.Message,
	}

	var labels []string
	var firstErr error
	for _, r := range s.rules {
		result, _, err := r.program.ContextEval(ctx, vars)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("rule %q: failed to evaluate CEL expression: %w", r.name, err)
			}
			continue
		}

		matched, ok := result.Value().(bool)
		if !ok {
			if firstErr == nil {
				firstErr = fmt.Errorf("rule %q: expression did not return bool, got %T", r.name, result.Value())
			}
			continue
		}

		if matched {
			labels = append(labels, r.name)
		}
	}

	return labels, firstErr
}
