package filter

import (
	"strings"
	"time"

	"github.com/phrazzld/tasktrack/internal/domain"
)

// Predicate is a single restriction over a user's tasks. Stores translate
// predicates into their own query language; Match evaluates one in memory.
// The set of predicates is closed: stores switch over the concrete types below.
type Predicate interface {
	Match(t *domain.Task) bool
	predicate()
}

// Search matches tasks whose title or description contains Term,
// ignoring case.
type Search struct {
	Term string
}

// Match implements Predicate.
func (s Search) Match(t *domain.Task) bool {
	term := strings.ToLower(s.Term)
	if strings.Contains(strings.ToLower(t.Title), term) {
		return true
	}
	return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), term)
}

// CategoryIs matches tasks with exactly the given category.
type CategoryIs struct {
	Category domain.Category
}

// Match implements Predicate.
func (c CategoryIs) Match(t *domain.Task) bool {
	return t.Category == c.Category
}

// CompletedIs matches tasks by completion state.
type CompletedIs struct {
	Completed bool
}

// Match implements Predicate.
func (c CompletedIs) Match(t *domain.Task) bool {
	return t.Completed == c.Completed
}

// DeadlineBefore matches tasks whose deadline is strictly before Before.
type DeadlineBefore struct {
	Before time.Time
}

// Match implements Predicate.
func (d DeadlineBefore) Match(t *domain.Task) bool {
	return t.Deadline.Before(d.Before)
}

// DeadlineRange matches tasks with From <= deadline < Until.
type DeadlineRange struct {
	From  time.Time
	Until time.Time
}

// Match implements Predicate.
func (d DeadlineRange) Match(t *domain.Task) bool {
	return !t.Deadline.Before(d.From) && t.Deadline.Before(d.Until)
}

func (Search) predicate()         {}
func (CategoryIs) predicate()     {}
func (CompletedIs) predicate()    {}
func (DeadlineBefore) predicate() {}
func (DeadlineRange) predicate()  {}
