package probe

import "fmt"

// ConfigurationError reports a required environment variable that was absent
// before any probing was attempted. It is a setup problem on the invoking
// side, not a probe failure, and is raised before any process is spawned.
type ConfigurationError struct {
	// Var is the name of the missing environment variable.
	Var string
	// Fact is the fact whose spec required the variable.
	Fact string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("fact %q: required environment variable %s is not set", e.Fact, e.Var)
}

// ProbeError reports a failed external tool invocation: a non-zero exit
// status, unparseable output, or a failed existence check on a derived path.
// Stderr carries the tool's captured error stream, which is the primary
// debugging signal for wrong-host-installation failures.
type ProbeError struct {
	Fact     string
	Tool     string
	ExitCode int
	Stderr   string
	Reason   string
}

func (e *ProbeError) Error() string {
	msg := fmt.Sprintf("fact %q: probe via %s failed: %s", e.Fact, e.Tool, e.Reason)
	if e.Stderr != "" {
		msg += "\nstderr:\n" + e.Stderr
	}
	return msg
}
