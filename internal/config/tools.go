package config

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Stderr redirection modes for a tool.
const (
	StderrNone = "none"
	StderrAuto = "auto"
	StderrWin  = "win"
	StderrUnix = "unix"
	StderrTcsh = "tcsh"
)

// Background execution modes for a tool.
const (
	BackgroundNone = "none"
	BackgroundAuto = "auto"
	BackgroundWin  = "win"
	BackgroundUnix = "unix"
)

// supplementPrefix marks a top-level section whose arguments are prepended
// to the tool of the same name.
const supplementPrefix = "tool_"

// Tool describes an external executable from the tools section.
type Tool struct {
	Name           string `mapstructure:"name" validate:"required"`
	Executable     string `mapstructure:"executable" validate:"required"`
	Arguments      []any  `mapstructure:"arguments"`
	StderrRedirect string `mapstructure:"stderr_redirect" validate:"oneof=none auto win unix tcsh"`
	BackgroundExec string `mapstructure:"background_exec" validate:"oneof=none auto win unix"`
	Optional       bool   `mapstructure:"optional"`
}

// ToolsSetup fills the per-tool defaults: the name falls back to the tool's
// key, redirect and background modes to "none", optional to false.
func ToolsSetup(tree Tree) {
	tools := section(tree, SectionTools)
	for name, raw := range tools {
		tool, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if tool["name"] == nil {
			tool["name"] = name
		}
		if tool["stderr_redirect"] == nil {
			tool["stderr_redirect"] = StderrNone
		}
		if tool["background_exec"] == nil {
			tool["background_exec"] = BackgroundNone
		}
		if tool["optional"] == nil {
			tool["optional"] = false
		}
	}
}

// SupplementToolArguments prepends the arguments of every top-level
// "tool_<name>" section to tools.<name>.arguments, keeping the supplemental
// list's own order ahead of the tool's existing arguments.
func SupplementToolArguments(tree Tree) {
	tools := section(tree, SectionTools)
	for name, raw := range tools {
		tool, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		extra := section(tree, supplementPrefix+name)
		if extra == nil {
			continue
		}
		supplemental, ok := asSequence(extra["arguments"])
		if !ok || len(supplemental) == 0 {
			continue
		}
		existing, _ := asSequence(tool["arguments"])
		merged := make([]any, 0, len(supplemental)+len(existing))
		merged = append(merged, cloneValue(supplemental).([]any)...)
		merged = append(merged, existing...)
		tool["arguments"] = merged
	}
}

// DecodeTool converts a raw tools entry into a Tool.
func DecodeTool(raw map[string]any) (Tool, error) {
	var tool Tool
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &tool,
		TagName: "mapstructure",
	})
	if err != nil {
		return Tool{}, fmt.Errorf("creating tool decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return Tool{}, fmt.Errorf("decoding tool: %w", err)
	}
	return tool, nil
}

// IsTemplated reports whether the executable is filled in at invocation
// time, e.g. "${1}" for a test fixture.
func (t Tool) IsTemplated() bool {
	return strings.Contains(t.Executable, "${") || HasExpression(t.Executable)
}

// ArgumentStrings renders the argument list as strings.
func (t Tool) ArgumentStrings() []string {
	return stringsOf(t.Arguments)
}
