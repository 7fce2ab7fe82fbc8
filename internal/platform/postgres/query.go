package postgres

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/filter"
)

const taskColumns = `id, user_id, title, description, category, deadline, completed, created_at, updated_at`

// orderColumns maps whitelisted sort fields to their columns. It is the only
// source of identifiers in an ORDER BY clause.
var orderColumns = map[filter.SortField]string{
	filter.SortByDeadline:  "deadline",
	filter.SortByTitle:     "title",
	filter.SortByCreatedAt: "created_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// queryBuilder accumulates WHERE conditions and their positional arguments.
type queryBuilder struct {
	conditions []string
	args       []any
}

// arg registers a value and returns its placeholder.
func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *queryBuilder) where(cond string) {
	b.conditions = append(b.conditions, cond)
}

// buildTaskQuery translates a plan over one user's tasks into SQL.
func buildTaskQuery(userID uuid.UUID, plan filter.Plan) (string, []any) {
	b := &queryBuilder{}
	b.where("user_id = " + b.arg(userID))

	for _, pred := range plan.Predicates {
		switch p := pred.(type) {
		case filter.Search:
			ph := b.arg("%" + likeEscaper.Replace(p.Term) + "%")
			b.where(fmt.Sprintf("(title ILIKE %s OR description ILIKE %s)", ph, ph))
		case filter.CategoryIs:
			b.where("category = " + b.arg(string(p.Category)))
		case filter.CompletedIs:
			b.where("completed = " + b.arg(p.Completed))
		case filter.DeadlineBefore:
			b.where("deadline < " + b.arg(p.Before))
		case filter.DeadlineRange:
			b.where("deadline >= " + b.arg(p.From))
			b.where("deadline < " + b.arg(p.Until))
		default:
			// Unknown predicates must never widen a result.
			b.where("FALSE")
		}
	}

	column, ok := orderColumns[plan.Order.Field]
	if !ok {
		column = orderColumns[filter.DefaultOrdering.Field]
	}
	direction := "ASC"
	if plan.Order.Direction == filter.Desc {
		direction = "DESC"
	}

	query := fmt.Sprintf("SELECT %s FROM tasks WHERE %s ORDER BY %s %s, id ASC",
		taskColumns, strings.Join(b.conditions, " AND "), column, direction)
	return query, b.args
}
