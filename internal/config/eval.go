package config

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"
)

// exprPattern matches an embedded deferred expression: #{...}.
var exprPattern = regexp.MustCompile(`#\{([^}]*)\}`)

var (
	envIndexPattern = regexp.MustCompile(`^ENV\[\s*['"]([^'"]+)['"]\s*\]$`)
	callPattern     = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*\((.*)\)$`)
	namePattern     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// HasExpression reports whether s carries a deferred expression marker.
func HasExpression(s string) bool {
	return exprPattern.MatchString(s)
}

// EnvFunc looks up an environment variable. os.LookupEnv satisfies it.
type EnvFunc func(key string) (string, bool)

// Evaluator replaces the deferred expressions in s using bindings, the
// flattened names resolved so far.
type Evaluator interface {
	Evaluate(s string, bindings Namespace) (string, error)
}

// ProviderFunc computes a value from already-evaluated arguments.
type ProviderFunc func(args []string) (string, error)

// EvalError ties an evaluation failure to the configuration entry that
// carried the expression.
type EvalError struct {
	Key  string
	Expr string
	Err  error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluating %s (%q): %v", e.Key, e.Expr, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

// ProviderEvaluator evaluates a closed set of expression forms:
//
//	#{ENV['NAME']}          environment variable, empty when unset
//	#{project_build_root}   a flattened name (case-insensitive)
//	#{join(a, "b", ...)}    a registered provider; arguments are quoted
//	                        literals or flattened names
//
// Anything else is an error. No code is ever executed.
type ProviderEvaluator struct {
	env       EnvFunc
	providers map[string]ProviderFunc
}

// NewProviderEvaluator returns an evaluator with the built-in providers
// join, env, pwd, basename and dirname. A nil env uses os.LookupEnv.
func NewProviderEvaluator(env EnvFunc) *ProviderEvaluator {
	if env == nil {
		env = os.LookupEnv
	}
	e := &ProviderEvaluator{env: env, providers: make(map[string]ProviderFunc)}
	e.Register("join", func(args []string) (string, error) {
		return path.Join(args...), nil
	})
	e.Register("env", func(args []string) (string, error) {
		if len(args) != 1 {
			return "", fmt.Errorf("env takes 1 argument, got %d", len(args))
		}
		v, ok := e.env(args[0])
		if !ok {
			return "", fmt.Errorf("environment variable %s is not set", args[0])
		}
		return v, nil
	})
	e.Register("pwd", func(args []string) (string, error) {
		if len(args) != 0 {
			return "", fmt.Errorf("pwd takes no arguments")
		}
		return os.Getwd()
	})
	e.Register("basename", func(args []string) (string, error) {
		if len(args) != 1 {
			return "", fmt.Errorf("basename takes 1 argument, got %d", len(args))
		}
		return path.Base(args[0]), nil
	})
	e.Register("dirname", func(args []string) (string, error) {
		if len(args) != 1 {
			return "", fmt.Errorf("dirname takes 1 argument, got %d", len(args))
		}
		return path.Dir(args[0]), nil
	})
	return e
}

// Register adds or replaces a named provider.
func (e *ProviderEvaluator) Register(name string, fn ProviderFunc) {
	e.providers[name] = fn
}

// Evaluate substitutes every marker in s. Strings without markers are
// returned unchanged.
func (e *ProviderEvaluator) Evaluate(s string, bindings Namespace) (string, error) {
	var firstErr error
	out := exprPattern.ReplaceAllStringFunc(s, func(marker string) string {
		if firstErr != nil {
			return marker
		}
		inner := strings.TrimSpace(exprPattern.FindStringSubmatch(marker)[1])
		v, err := e.evalInner(inner, bindings)
		if err != nil {
			firstErr = err
			return marker
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

func (e *ProviderEvaluator) evalInner(inner string, bindings Namespace) (string, error) {
	if m := envIndexPattern.FindStringSubmatch(inner); m != nil {
		v, _ := e.env(m[1])
		return v, nil
	}
	if m := callPattern.FindStringSubmatch(inner); m != nil {
		fn, ok := e.providers[m[1]]
		if !ok {
			return "", fmt.Errorf("unknown provider %q", m[1])
		}
		rawArgs, err := splitArgs(m[2])
		if err != nil {
			return "", err
		}
		args := make([]string, 0, len(rawArgs))
		for _, a := range rawArgs {
			v, err := resolveArg(a, bindings)
			if err != nil {
				return "", err
			}
			args = append(args, v)
		}
		return fn(args)
	}
	if namePattern.MatchString(inner) {
		return resolveName(inner, bindings)
	}
	return "", fmt.Errorf("unsupported expression %q", inner)
}

func resolveArg(arg string, bindings Namespace) (string, error) {
	if n := len(arg); n >= 2 && (arg[0] == '"' || arg[0] == '\'') && arg[n-1] == arg[0] {
		return arg[1 : n-1], nil
	}
	if !namePattern.MatchString(arg) {
		return "", fmt.Errorf("invalid argument %q", arg)
	}
	return resolveName(arg, bindings)
}

func resolveName(name string, bindings Namespace) (string, error) {
	v, ok := bindings[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("unknown name %q", name)
	}
	return scalarString(v), nil
}

// splitArgs splits a provider argument list on commas outside quotes.
func splitArgs(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var (
		args  []string
		cur   strings.Builder
		quote byte
	)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
			cur.WriteByte(ch)
		case ch == '"' || ch == '\'':
			quote = ch
			cur.WriteByte(ch)
		case ch == ',':
			args = append(args, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in %q", s)
	}
	return append(args, strings.TrimSpace(cur.String())), nil
}
