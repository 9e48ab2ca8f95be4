// Package cel evaluates CEL expressions against a value.Value. The root value
// is bound to the variable "_".
package cel

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/decls"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/jvx/pkg/value"
)

// RootVariable is the name the evaluated value is bound to.
const RootVariable = "_"

var (
	// _ followed by .field, [N] or ["key"] segments only.
	pathExpression = regexp.MustCompile(`^_(?:\.[A-Za-z_][A-Za-z0-9_]*|\[[0-9]+\]|\["(?:[^"\\]|\\.)*"\])*$`)
	macroCall      = regexp.MustCompile(`\b(?:map|filter|all|exists|exists_one|has|size|dyn)\s*\(`)
)

// Evaluator compiles and evaluates CEL expressions.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates an evaluator with the standard library, the common
// extension libraries and cross-type numeric comparisons. Extra options
// extend the environment, e.g. with custom functions.
func NewEvaluator(opts ...cel.EnvOption) (*Evaluator, error) {
	env, err := newStandardCELEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Environment returns the CEL environment for introspection.
func (e *Evaluator) Environment() *cel.Env {
	return e.env
}

func newStandardCELEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 6+len(opts))
	allOpts = append(allOpts,
		cel.Variable(RootVariable, cel.DynType),
		// decoded numbers are doubles; let `_.count > 1` compare against int literals
		cel.CrossTypeNumericComparisons(true),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}

// Evaluate evaluates expr against root. An empty expression or "_" returns
// root itself. Plain path expressions such as `_.items[0].name` are resolved
// directly so the result keeps the member order of the input; anything else
// goes through CEL and objects in the result come back with sorted keys.
func (e *Evaluator) Evaluate(expr string, root value.Value) (value.Value, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || expr == RootVariable {
		return root, nil
	}
	if pathExpression.MatchString(expr) {
		if v, ok := value.Lookup(root, expr[1:]); ok {
			return v, nil
		}
	}
	out, err := evaluateWithEnv(e.env, expr, value.ToAny(root))
	if err != nil {
		return value.Value{}, err
	}
	return value.FromAny(out), nil
}

// evaluateWithEnv compiles expr, runs it with data bound to "_" and converts
// the result to plain Go values.
func evaluateWithEnv(env *cel.Env, expr string, data any) (any, error) {
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}

	result, _, err := prg.Eval(map[string]any{
		RootVariable: data,
	})
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}
	return ToGo(result), nil
}

// ToGo converts CEL values to plain Go values recursively.
func ToGo(val ref.Val) any {
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case types.Null:
		return nil
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	case types.Timestamp:
		return v.Time
	case types.Duration:
		return v.Duration.String()
	}

	valuer, ok := val.(interface{ Value() any })
	if !ok {
		return val
	}
	return nativeToGo(valuer.Value())
}

// nativeToGo converts what a CEL collection exposes through Value(): either
// the Go value it wraps or slices and maps of ref.Val.
func nativeToGo(inner any) any {
	switch t := inner.(type) {
	case ref.Val:
		return ToGo(t)
	case []ref.Val:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = ToGo(elem)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = nativeToGo(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[k] = nativeToGo(v)
		}
		return out
	case map[ref.Val]ref.Val:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[fmt.Sprintf("%v", nativeToGo(k.Value()))] = ToGo(v)
		}
		return out
	case time.Duration:
		return t.String()
	default:
		return inner
	}
}

// IsCELExpression reports whether expr needs CEL rather than a plain path
// lookup: it calls a macro or function, compares, or combines values.
func IsCELExpression(expr string) bool {
	expr = strings.TrimSpace(expr)
	if pathExpression.MatchString(expr) {
		return false
	}
	if macroCall.MatchString(expr) {
		return true
	}
	return strings.ContainsAny(expr, "=!<>&|+-*/%?()")
}

// Functions lists the functions and macros of the evaluator's environment as
// usage strings ("name() - receiver.name(args) -> result"), sorted and
// without operators.
func (e *Evaluator) Functions() []string {
	seen := make(map[string]bool)
	out := make([]string, 0, 100)

	for _, fn := range e.env.Functions() {
		if isOperator(fn.Name()) {
			continue
		}
		for _, o := range fn.OverloadDecls() {
			entry := fn.Name() + "() - " + usageFromOverload(fn.Name(), o)
			if seen[entry] {
				continue
			}
			seen[entry] = true
			out = append(out, entry)
		}
	}

	for _, m := range e.env.Macros() {
		name := m.Function()
		if isOperator(name) {
			continue
		}
		entry := name + "() - macro"
		if seen[entry] {
			continue
		}
		seen[entry] = true
		out = append(out, entry)
	}

	sort.Strings(out)
	return out
}

// isOperator filters out internal operator-style declarations.
func isOperator(name string) bool {
	if strings.HasPrefix(name, "@") || strings.HasPrefix(name, "!") {
		return true
	}
	if strings.HasPrefix(name, "_") || strings.HasSuffix(name, "_") {
		return true
	}
	return false
}

func typeLabel(t *types.Type) string {
	if t == nil {
		return "any"
	}
	if name := t.DeclaredTypeName(); name != "" {
		return name
	}
	if name := t.TypeName(); name != "" {
		return name
	}
	return "any"
}

func formatParams(params []*types.Type) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = typeLabel(p)
	}
	return strings.Join(parts, ", ")
}

func usageFromOverload(name string, o *decls.OverloadDecl) string {
	params := o.ArgTypes()
	call := name + "(" + formatParams(params) + ")"
	if o.IsMemberFunction() && len(params) > 0 {
		call = typeLabel(params[0]) + "." + name + "(" + formatParams(params[1:]) + ")"
	}
	if o.ResultType() == nil {
		return call
	}
	return call + " -> " + typeLabel(o.ResultType())
}
