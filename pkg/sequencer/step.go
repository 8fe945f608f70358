package sequencer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrSkipped is returned for steps not sent because an earlier step failed
	ErrSkipped = errors.New("skipped due to earlier errors")
	// ErrTimeout is returned when the expected reply did not arrive in time
	ErrTimeout = errors.New("no expected reply")
	// ErrWarning is ErrTimeout for steps flagged as warnings only
	ErrWarning = errors.New("no expected reply (warning)")
	// ErrClosed is returned once the port stopped delivering lines
	ErrClosed = errors.New("port closed")
)

// Step is a single command sent to the machine
type Step struct {
	Code    string
	Expect  string
	Timeout time.Duration
	Message string
	Delay   time.Duration
	Warning bool
	Quiet   bool
}

// label names the step in traces
func (s Step) label() string {
	if s.Message != "" {
		return s.Message
	}
	return s.Code
}

// matches reports whether a reply acknowledges the step. Firmware often
// appends data to the acknowledgement ("ok T:21.3"), so a prefix matches too.
// An empty Expect accepts the first line.
func (s Step) matches(reply string) bool {
	return strings.HasPrefix(reply, s.Expect)
}

// Status is the outcome of a step
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusWarning Status = "warning"
	StatusSkipped Status = "skipped"
)

// StepResult is reported to the Recorder for every step
type StepResult struct {
	Step    Step
	Status  Status
	Reply   string
	Elapsed time.Duration
	Err     error
}

// Recorder receives step results, e.g. to journal a run
type Recorder interface {
	RecordStep(StepResult) error
}

// Summary counts step outcomes
type Summary struct {
	Steps    int
	Errors   int
	Warnings int
	Skipped  int
}

// OK reports whether no step failed
func (s Summary) OK() bool {
	return s.Errors == 0
}

func (s Summary) String() string {
	if s.Errors > 0 {
		return fmt.Sprintf("%d Error(s) occurred\n%d operation(s) have been skipped due to errors.", s.Errors, s.Skipped)
	}
	return "All clear!"
}

var placeholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Expand replaces ${name} placeholders in a code with configured values.
// Other dollar signs are left alone, GRBL uses them for its own commands.
func Expand(code string, vars map[string]string) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(code, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		value, ok := vars[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("undefined variable(s) %s in %q", strings.Join(missing, ", "), code)
	}
	return out, nil
}
