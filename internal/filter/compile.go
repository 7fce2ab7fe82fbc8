package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/phrazzld/tasktrack/internal/domain"
)

// SortField is a task field results may be ordered by.
type SortField string

// Whitelisted sort fields. Anything else falls back to the default ordering.
const (
	SortByDeadline  SortField = "deadline"
	SortByTitle     SortField = "title"
	SortByCreatedAt SortField = "created_at"
)

// Direction is an ordering direction.
type Direction string

// Ordering directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Deadline buckets.
const (
	BucketOverdue = "overdue"
	BucketToday   = "today"
	BucketWeek    = "week"
	BucketMonth   = "month"
)

// Ordering is the sort rule of a Plan.
type Ordering struct {
	Field     SortField
	Direction Direction
}

// DefaultOrdering is ascending by deadline.
var DefaultOrdering = Ordering{Field: SortByDeadline, Direction: Asc}

// Plan is a compiled query over one user's tasks: every predicate must
// match, results are sorted by Order.
type Plan struct {
	Predicates []Predicate
	Order      Ordering
}

// Stage turns the parameters it understands into zero or more predicates.
// Stages never fail: values they cannot interpret produce no predicate.
type Stage func(p Params, now time.Time) []Predicate

// Stages is the ordered list of predicate stages applied by Compile.
var Stages = []Stage{
	SearchStage,
	CategoryStage,
	CompletedStage,
	DeadlineStage,
}

// Compile builds the query plan for p, evaluating time windows against now.
// The same now must be used for everything derived from one request.
func Compile(p Params, now time.Time) Plan {
	plan := Plan{Order: OrderingFor(p)}
	for _, stage := range Stages {
		plan.Predicates = append(plan.Predicates, stage(p, now)...)
	}
	return plan
}

// SearchStage restricts to tasks whose title or description contains the search term.
func SearchStage(p Params, _ time.Time) []Predicate {
	term := p.Value(KeySearch)
	if term == "" || !WellFormed(term) {
		return nil
	}
	return []Predicate{Search{Term: term}}
}

// CategoryStage restricts to an exact category.
func CategoryStage(p Params, _ time.Time) []Predicate {
	category := p.Value(KeyCategory)
	if category == "" || !WellFormed(category) {
		return nil
	}
	return []Predicate{CategoryIs{Category: domain.Category(category)}}
}

// CompletedStage restricts by completion state, only when the key was supplied.
func CompletedStage(p Params, _ time.Time) []Predicate {
	value, ok := p.Get(KeyCompleted)
	if !ok {
		return nil
	}
	return []Predicate{CompletedIs{Completed: ParseBool(value)}}
}

// DeadlineStage restricts to a named deadline bucket relative to now.
// Unknown bucket names, malformed ones included, are ignored.
func DeadlineStage(p Params, now time.Time) []Predicate {
	switch p.Value(KeyDeadline) {
	case BucketOverdue:
		return []Predicate{
			DeadlineBefore{Before: now},
			CompletedIs{Completed: false},
		}
	case BucketToday:
		start := startOfDay(now)
		return []Predicate{DeadlineRange{From: start, Until: start.AddDate(0, 0, 1)}}
	case BucketWeek:
		return []Predicate{DeadlineRange{From: now, Until: startOfNextWeek(now)}}
	case BucketMonth:
		return []Predicate{DeadlineRange{From: now, Until: startOfNextMonth(now)}}
	default:
		return nil
	}
}

// OrderingFor returns the requested ordering when sort_by is whitelisted and
// a direction was supplied, and DefaultOrdering otherwise.
func OrderingFor(p Params) Ordering {
	field := SortField(p.Value(KeySortBy))
	direction := p.Value(KeySortDirection)
	if !field.Valid() || direction == "" {
		return DefaultOrdering
	}
	if direction == string(Desc) {
		return Ordering{Field: field, Direction: Desc}
	}
	return Ordering{Field: field, Direction: Asc}
}

// Valid reports whether f is a whitelisted sort field.
func (f SortField) Valid() bool {
	switch f {
	case SortByDeadline, SortByTitle, SortByCreatedAt:
		return true
	}
	return false
}

// Matches reports whether t satisfies every predicate of the plan.
func (pl Plan) Matches(t *domain.Task) bool {
	for _, pred := range pl.Predicates {
		if !pred.Match(t) {
			return false
		}
	}
	return true
}

// Apply filters and sorts tasks in memory. Titles compare case-insensitively,
// falling back to byte order, which approximates a database collation but is
// not guaranteed to match it. Ties are broken by ID.
func (pl Plan) Apply(tasks []domain.Task) []domain.Task {
	result := make([]domain.Task, 0, len(tasks))
	for i := range tasks {
		if pl.Matches(&tasks[i]) {
			result = append(result, tasks[i])
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		c := compareBy(pl.Order.Field, &result[i], &result[j])
		if c == 0 {
			return result[i].ID.String() < result[j].ID.String()
		}
		if pl.Order.Direction == Desc {
			return c > 0
		}
		return c < 0
	})
	return result
}

func compareBy(field SortField, a, b *domain.Task) int {
	switch field {
	case SortByTitle:
		if c := strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)); c != 0 {
			return c
		}
		return strings.Compare(a.Title, b.Title)
	case SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return a.Deadline.Compare(b.Deadline)
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfNextWeek returns midnight of the next Monday; weeks run Monday to Sunday.
func startOfNextWeek(t time.Time) time.Time {
	days := (8 - int(t.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	return startOfDay(t).AddDate(0, 0, days)
}

func startOfNextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
}
