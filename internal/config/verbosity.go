package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Verbosity controls how much the build tool reports. It is handed to the
// mock generator and maps onto log levels.
type Verbosity int

const (
	VerbositySilent Verbosity = iota
	VerbosityErrors
	VerbosityComplain
	VerbosityNormal
	VerbosityObnoxious
	VerbosityDebug
)

var verbosityNames = []string{"silent", "errors", "complain", "normal", "obnoxious", "debug"}

func (v Verbosity) String() string {
	if v < VerbositySilent || v > VerbosityDebug {
		return strconv.Itoa(int(v))
	}
	return verbosityNames[v]
}

// Set parses a level name or number. It lets Verbosity serve as a flag value.
func (v *Verbosity) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range verbosityNames {
		if s == name {
			*v = Verbosity(i)
			return nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < int(VerbositySilent) || n > int(VerbosityDebug) {
		return fmt.Errorf("invalid verbosity %q: must be one of %s or 0-5", s, strings.Join(verbosityNames, ", "))
	}
	*v = Verbosity(n)
	return nil
}

// Type names the flag value type.
func (v *Verbosity) Type() string {
	return "verbosity"
}
