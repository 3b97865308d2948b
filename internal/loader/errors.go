package loader

import (
	"fmt"
	"strings"
)

// BundleError reports one problem in an authored bundle: a parse failure,
// a missing field, or a dangling symbol reference.
type BundleError struct {
	// Path locates the problem, e.g. "triggers[2].when" or "rooms.cellar".
	Path    string
	Message string
}

func (e *BundleError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ErrorList aggregates bundle problems so authors see them all at once
// instead of fixing one per load attempt.
type ErrorList struct {
	Errors []*BundleError
}

func (e *ErrorList) add(path, format string, args ...any) {
	e.Errors = append(e.Errors, &BundleError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (e *ErrorList) empty() bool { return len(e.Errors) == 0 }

func (e *ErrorList) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "bundle has %d problem(s):", len(e.Errors))
	for _, err := range e.Errors {
		b.WriteString("\n  - ")
		b.WriteString(err.Error())
	}
	return b.String()
}
