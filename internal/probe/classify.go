package probe

import (
	"regexp"
	"strings"
)

// Classifier turns the raw output of one probe into an Outcome and the result
// line worth logging.
//
// The two strategies classify differently. Locally the exit status of ping is
// authoritative. Through a relay only the output text is looked at, since the
// remote exit status has never been part of that decision; a reply that says
// "unreachable" still counts as a failure either way.
type Classifier interface {
	Classify(stdout string, exitCode int) Verdict
}

// Verdict is a classified probe. Err is set when a reply looked successful
// but carried no readable latency; the outcome is then a failure.
type Verdict struct {
	Outcome Outcome
	Line    string
	Err     error
}

// ExitStatusClassifier trusts the process exit status.
type ExitStatusClassifier struct{}

// Classify implements Classifier.
func (ExitStatusClassifier) Classify(stdout string, exitCode int) Verdict {
	if exitCode != 0 {
		return Verdict{Outcome: Failure()}
	}
	return parseSuccess(ResultLine(stdout))
}

// TextClassifier ignores the exit status and decides from output alone.
type TextClassifier struct{}

var unreachable = regexp.MustCompile(`(?i)unreachable`)

// Classify implements Classifier.
func (TextClassifier) Classify(stdout string, _ int) Verdict {
	line := ResultLine(stdout)
	if strings.TrimSpace(line) == "" || unreachable.MatchString(line) {
		return Verdict{Outcome: Failure()}
	}
	return parseSuccess(line)
}

func parseSuccess(line string) Verdict {
	ms, err := ParseLatency(line)
	if err != nil {
		return Verdict{Outcome: Failure(), Err: err}
	}
	return Verdict{Outcome: Success(ms), Line: line}
}
