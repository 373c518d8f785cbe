package requirements

import (
	"fmt"
	"sort"
	"strings"

	"github.com/banshee-data/lanelint/internal/lanemap"
	"github.com/banshee-data/lanelint/internal/validation"
)

// Synthetic issue messages attached to validators that never execute.
const (
	unresolvableMessage = "Prerequisites don't exist OR they are making a loop."
	blockedMessage      = "Prerequisites didn't pass."
)

// RunFunc runs the single named check against a map. It exists so tests can
// substitute scripted validators for the registry.
type RunFunc func(m *lanemap.Map, name string) []validation.Issue

// Scheduler orders and runs the validators declared in a requirements
// document. It is single-threaded: one full pass per Run call, no
// cancellation, no state kept between runs.
type Scheduler struct {
	run RunFunc
}

// NewScheduler returns a Scheduler backed by the validator registry.
func NewScheduler() *Scheduler {
	return &Scheduler{run: validation.RunCheck}
}

// NewSchedulerWithRunner returns a Scheduler that executes validators
// through the given function.
func NewSchedulerWithRunner(run RunFunc) *Scheduler {
	return &Scheduler{run: run}
}

// vstate carries the scheduling state of one uniquely named validator.
// A validator listed by several requirements is still one validator; all of
// its spec entries share this state.
type vstate struct {
	name     string
	prereqs  []Prerequisite
	specs    []*ValidatorSpec
	severity validation.Severity
	issues   []validation.Issue
	passed   bool
}

// Result is the aggregate outcome of one scheduling pass.
type Result struct {
	doc *Document

	// Order is the execution order of the resolvable validators.
	Order []string

	// Unresolved lists validators with missing or cyclic prerequisites.
	Unresolved []string

	// Issues is the flattened issue stream, grouped by validator in name
	// order.
	Issues []validation.Issue

	WarningCount int
	ErrorCount   int
}

// TotalIssues returns the number of issues recorded across all validators.
// The CLI exits zero iff this is zero.
func (r *Result) TotalIssues() int { return len(r.Issues) }

// Run schedules and executes every validator in the document against the
// map, annotates the document in place and returns the aggregate result.
//
// Scheduling is a Kahn-style topological sort over the prerequisite graph.
// Validators that never reach zero in-degree (cycle members, or dependents
// of names absent from the document) are quarantined with a synthetic Error
// issue instead of running; the unresolved set is only finalized after the
// worklist drains. A resolvable validator is additionally blocked when any
// prerequisite recorded severity Error, or Warning without that edge's
// forgive flag.
func (s *Scheduler) Run(doc *Document, m *lanemap.Map) *Result {
	states := make(map[string]*vstate)
	var names []string
	for _, req := range doc.Requirements {
		for _, spec := range req.Validators {
			st, ok := states[spec.Name]
			if !ok {
				st = &vstate{name: spec.Name}
				states[spec.Name] = st
				names = append(names, spec.Name)
			}
			st.specs = append(st.specs, spec)
			st.prereqs = mergePrerequisites(st.prereqs, spec.Prerequisites)
		}
	}
	sort.Strings(names)

	// Dependency graph: edge prerequisite -> dependent. Prerequisites naming
	// validators absent from the document count towards the in-degree but
	// are never drained, which leaves their dependents unresolved.
	inDegree := make(map[string]int, len(names))
	dependents := make(map[string][]string, len(names))
	for _, name := range names {
		st := states[name]
		inDegree[name] = len(st.prereqs)
		for _, p := range st.prereqs {
			if _, exists := states[p.Name]; exists {
				dependents[p.Name] = append(dependents[p.Name], name)
			}
		}
	}

	var queue []string
	for _, name := range names {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	var order []string
	for len(queue) > 0 {
		sort.Strings(queue)
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)
		for _, dep := range dependents[name] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	ordered := make(map[string]bool, len(order))
	for _, name := range order {
		ordered[name] = true
	}
	var unresolved []string
	for _, name := range names {
		if !ordered[name] {
			unresolved = append(unresolved, name)
		}
	}

	for _, name := range unresolved {
		st := states[name]
		st.issues = []validation.Issue{validation.NewIssue(
			validation.SeverityError, validation.PrimitiveGeneric, lanemap.InvalID, unresolvableMessage)}
		st.severity = validation.SeverityError
		st.passed = false
	}

	for _, name := range order {
		st := states[name]
		if blocked(st, states) {
			st.issues = []validation.Issue{validation.NewIssue(
				validation.SeverityError, validation.PrimitiveGeneric, lanemap.InvalID, blockedMessage)}
			st.severity = validation.SeverityError
			st.passed = false
			continue
		}

		issues := s.run(m, name)
		st.issues = issues
		st.severity = validation.SeverityNone
		for _, issue := range issues {
			st.severity = validation.Combine(st.severity, issue.Severity)
		}
		st.passed = len(issues) == 0
	}

	// Write results back into the document. Every spec entry of a shared
	// validator gets its own copy of the passed flag so later mutation of
	// one entry cannot leak into another.
	for _, name := range names {
		st := states[name]
		for _, spec := range st.specs {
			passed := st.passed
			spec.Passed = &passed
			spec.Issues = st.issues
		}
	}
	for _, req := range doc.Requirements {
		passed := true
		for _, spec := range req.Validators {
			if spec.Passed == nil || !*spec.Passed {
				passed = false
			}
		}
		req.Passed = &passed
	}

	result := &Result{doc: doc, Order: order, Unresolved: unresolved}
	for _, name := range names {
		st := states[name]
		result.Issues = append(result.Issues, st.issues...)
		for _, issue := range st.issues {
			switch issue.Severity {
			case validation.SeverityWarning:
				result.WarningCount++
			case validation.SeverityError:
				result.ErrorCount++
			}
		}
	}
	return result
}

// blocked reports whether any prerequisite's recorded severity prevents the
// validator from running.
func blocked(st *vstate, states map[string]*vstate) bool {
	for _, p := range st.prereqs {
		ps, ok := states[p.Name]
		if !ok {
			// Unreachable for resolvable validators; treated as blocking.
			return true
		}
		if ps.severity == validation.SeverityError {
			return true
		}
		if ps.severity == validation.SeverityWarning && !p.ForgiveWarnings {
			return true
		}
	}
	return false
}

// mergePrerequisites unions prerequisite lists by name. When the same
// prerequisite is declared with conflicting forgive flags, the stricter
// declaration (forgive_warnings=false) wins.
func mergePrerequisites(existing, extra []Prerequisite) []Prerequisite {
	byName := make(map[string]int, len(existing))
	for i, p := range existing {
		byName[p.Name] = i
	}
	for _, p := range extra {
		if i, ok := byName[p.Name]; ok {
			if !p.ForgiveWarnings {
				existing[i].ForgiveWarnings = false
			}
			continue
		}
		byName[p.Name] = len(existing)
		existing = append(existing, p)
	}
	return existing
}

// Summary renders a human-readable pass/fail report of the annotated
// document.
func (r *Result) Summary() string {
	var b strings.Builder
	for _, req := range r.doc.Requirements {
		status := "FAILED"
		if req.Passed != nil && *req.Passed {
			status = "PASSED"
		}
		fmt.Fprintf(&b, "Requirement %s: %s\n", req.ID, status)
		for _, spec := range req.Validators {
			status := "failed"
			if spec.Passed != nil && *spec.Passed {
				status = "passed"
			}
			fmt.Fprintf(&b, "  - %s: %s (%d issues)\n", spec.Name, status, len(spec.Issues))
		}
	}
	fmt.Fprintf(&b, "Total: %d warnings, %d errors\n", r.WarningCount, r.ErrorCount)
	return b.String()
}
