// Package audit reloads the generated tables and validates them: referential
// integrity, numeric sanity and refund caps as hard rules, and statistical
// drift of the repeat-order rate against the generative model as tolerance-
// banded soft rules.
package audit

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Finding severity. Errors are always fatal; warnings escalate only under the
// baseline messiness profile.
const (
	LevelError = "error"
	LevelWarn  = "warn"
)

type Finding struct {
	Level   string
	Check   string
	Message string
}

type Report struct {
	Findings []Finding
}

func (r *Report) Errorf(check, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{Level: LevelError, Check: check, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) Warnf(check, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{Level: LevelWarn, Check: check, Message: fmt.Sprintf(format, args...)})
}

// Counts returns the number of error- and warn-level findings.
func (r *Report) Counts() (errors, warnings int) {
	for _, f := range r.Findings {
		if f.Level == LevelError {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}

// Log emits every finding through the global logger.
func (r *Report) Log() {
	for _, f := range r.Findings {
		ev := log.Warn()
		if f.Level == LevelError {
			ev = log.Error()
		}
		ev.Str("check", f.Check).Msg(f.Message)
	}
}

// Err folds the report into a single error. Error findings are always fatal;
// warnings become fatal when failOnWarning is set (baseline profile).
func (r *Report) Err(failOnWarning bool) error {
	errs, warns := r.Counts()
	if errs > 0 {
		return fmt.Errorf("audit failed: %d error finding(s), %d warning(s)", errs, warns)
	}
	if failOnWarning && warns > 0 {
		return fmt.Errorf("audit failed under baseline profile: %d warning(s) escalated", warns)
	}
	return nil
}
