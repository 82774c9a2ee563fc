package core

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// RuleEnv is the environment exposed to `when:` expressions on configured
// ingress rules, e.g. `Region == "us-ashburn-1" && Managed`.
type RuleEnv struct {
	Stack   string
	Region  string
	Profile string
	Managed bool
}

// EvaluateCondition compiles and evaluates a string expression against env.
// An empty condition is true.
func EvaluateCondition(condition string, env RuleEnv) (bool, error) {
	if condition == "" {
		return true, nil
	}

	program, err := expr.Compile(condition, expr.Env(env))
	if err != nil {
		return false, fmt.Errorf("invalid condition '%s': %v", condition, err)
	}

	output, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("evaluation failed: %v", err)
	}

	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("condition must return a boolean, got %T", output)
	}

	return result, nil
}
