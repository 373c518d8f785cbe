// Package validation defines the issue model shared by all map checks and
// the registry through which checks are discovered and run.
package validation

// Severity grades an issue. The set is closed and totally ordered by
// decreasing tolerance: None < Info < Warning < Error.
type Severity string

const (
	SeverityNone    Severity = "None"
	SeverityInfo    Severity = "Info"
	SeverityWarning Severity = "Warning"
	SeverityError   Severity = "Error"
)

// severityOrder is the explicit total order over the closed severity set.
// Comparisons go through this table rather than through any property of the
// constant values themselves.
var severityOrder = map[Severity]int{
	SeverityNone:    0,
	SeverityInfo:    1,
	SeverityWarning: 2,
	SeverityError:   3,
}

// Combine returns the more severe of a and b ("most severe so far"
// semantics). Unknown severities rank below None.
func Combine(a, b Severity) Severity {
	if severityOrder[b] > severityOrder[a] {
		return b
	}
	return a
}

// AtLeast reports whether s is at least as severe as min.
func (s Severity) AtLeast(min Severity) bool {
	return severityOrder[s] >= severityOrder[min]
}
