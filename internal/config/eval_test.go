package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapEnv returns an EnvFunc backed by vars.
func mapEnv(vars map[string]string) EnvFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestProviderEvaluator_Evaluate(t *testing.T) {
	t.Parallel()

	ev := NewProviderEvaluator(mapEnv(map[string]string{"CC": "clang", "ROOT": "/opt/tools"}))
	bindings := Namespace{
		"project_build_root": "build",
		"paths_source":       []any{"src", "lib"},
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no marker", in: "plain/path", want: "plain/path"},
		{name: "env index", in: "#{ENV['CC']}", want: "clang"},
		{name: "env index double quotes", in: `#{ENV["CC"]}`, want: "clang"},
		{name: "env index unset is empty", in: "x#{ENV['MISSING']}y", want: "xy"},
		{name: "bare name", in: "#{project_build_root}/artifacts", want: "build/artifacts"},
		{name: "bare name any case", in: "#{PROJECT_BUILD_ROOT}", want: "build"},
		{name: "sequence name joined by space", in: "#{paths_source}", want: "src lib"},
		{name: "join literals and names", in: `#{join(project_build_root, "test", 'mocks')}`, want: "build/test/mocks"},
		{name: "env provider", in: "#{env('ROOT')}/bin", want: "/opt/tools/bin"},
		{name: "basename", in: `#{basename("a/b/helper.h")}`, want: "helper.h"},
		{name: "dirname", in: `#{dirname("a/b/helper.h")}`, want: "a/b"},
		{name: "several markers", in: "#{ENV['CC']}-#{project_build_root}", want: "clang-build"},
		{name: "spaces inside marker", in: "#{ join( 'a' , 'b' ) }", want: "a/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ev.Evaluate(tt.in, bindings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProviderEvaluator_Errors(t *testing.T) {
	t.Parallel()

	ev := NewProviderEvaluator(mapEnv(nil))

	tests := []struct {
		name    string
		in      string
		wantErr string
	}{
		{name: "unknown provider", in: "#{system('rm -rf /')}", wantErr: "unknown provider"},
		{name: "unknown name", in: "#{nowhere}", wantErr: "unknown name"},
		{name: "arbitrary code", in: "#{1 + 2}", wantErr: "unsupported expression"},
		{name: "env provider unset", in: "#{env('MISSING')}", wantErr: "not set"},
		{name: "wrong arity", in: "#{basename('a', 'b')}", wantErr: "1 argument"},
		{name: "unterminated quote", in: `#{join("a, b)}`, wantErr: "unterminated quote"},
		{name: "bad argument", in: "#{join(a b)}", wantErr: "invalid argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ev.Evaluate(tt.in, Namespace{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProviderEvaluator_Register(t *testing.T) {
	t.Parallel()

	ev := NewProviderEvaluator(mapEnv(nil))
	ev.Register("upper", func(args []string) (string, error) {
		return strings.ToUpper(strings.Join(args, "")), nil
	})

	got, err := ev.Evaluate("#{upper('abc')}", nil)
	require.NoError(t, err)
	assert.Equal(t, "ABC", got)
}

func TestHasExpression(t *testing.T) {
	t.Parallel()

	assert.True(t, HasExpression("a#{b}c"))
	assert.False(t, HasExpression("${1}"))
	assert.False(t, HasExpression("#{unterminated"))
}
