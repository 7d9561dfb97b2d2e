package main

import (
	"context"
	"fmt"
	"strings"
)

// Column targets for each logical predicate field. The search runs over
// identity with the attribute tables LEFT JOINed, so post-join predicates
// see NULL for users without the record.
var fieldColumns = map[string]string{
	"gender":       "u.gender",
	"full_name":    "u.full_name",
	"created_at":   "u.created_at",
	"birth_date":   "u.birth_date",
	"height_cm":    "COALESCE(p.height_cm, 0)", // absent height coerces to 0
	"religion":     "p.religion",
	"sub_caste":    "p.sub_caste",
	"city":         "p.city",
	"occupation":   "pr.occupation",
	"organization": "pr.organization",
	"hiv_status":   "h.hiv_status",
}

const searchFromClause = `
	FROM users u
	LEFT JOIN personals p ON p.user_id = u.id
	LEFT JOIN health_records h ON h.user_id = u.id
	LEFT JOIN professions pr ON pr.user_id = u.id`

// renderPredicates turns the plan's predicate list into a WHERE fragment
// and its argument list. Phase order is preserved: pre-join, post-join,
// privacy.
func renderPredicates(plan QueryPlan) (string, []interface{}) {
	var conds []string
	var args []interface{}

	next := func() int { return len(args) + 1 }

	for _, ph := range []phase{phasePreJoin, phasePostJoin, phasePrivacy} {
		for _, pr := range plan.predicatesIn(ph) {
			col := fieldColumns[pr.Field]
			switch pr.Op {
			case opEq:
				conds = append(conds, fmt.Sprintf("%s = $%d", col, next()))
				args = append(args, pr.Str)
			case opSubstr:
				conds = append(conds, fmt.Sprintf("%s ILIKE '%%' || $%d || '%%'", col, next()))
				args = append(args, pr.Str)
			case opSubstrEither:
				altCol := fieldColumns[pr.AltField]
				n := next()
				conds = append(conds, fmt.Sprintf("(%s ILIKE '%%' || $%d || '%%' OR %s ILIKE '%%' || $%d || '%%')", col, n, altCol, n+1))
				args = append(args, pr.Str, pr.Str)
			case opMin:
				conds = append(conds, fmt.Sprintf("%s >= $%d", col, next()))
				args = append(args, pr.Value)
			case opMax:
				conds = append(conds, fmt.Sprintf("%s <= $%d", col, next()))
				args = append(args, pr.Value)
			case opDateMin:
				conds = append(conds, fmt.Sprintf("%s >= $%d", col, next()))
				args = append(args, pr.From)
			case opDateWindow:
				if !pr.From.IsZero() {
					conds = append(conds, fmt.Sprintf("%s >= $%d", col, next()))
					args = append(args, pr.From)
				}
				if !pr.To.IsZero() {
					conds = append(conds, fmt.Sprintf("%s <= $%d", col, next()))
					args = append(args, pr.To)
				}
			case opNotBlocked:
				n := next()
				conds = append(conds, fmt.Sprintf(`u.id <> $%d AND NOT EXISTS (
				SELECT 1 FROM blocks b
				WHERE (b.user_id = $%d AND b.blocked_user_id = u.id)
				   OR (b.user_id = u.id AND b.blocked_user_id = $%d)
			)`, n, n+1, n+2))
				args = append(args, pr.UserID, pr.UserID, pr.UserID)
			case opDisclosure:
				lits := make([]string, len(pr.Literals))
				for i, lit := range pr.Literals {
					lits[i] = fmt.Sprintf("$%d", next())
					args = append(args, lit)
				}
				// NULL never matches IN, so undisclosed candidates are
				// excluded from both restricted branches.
				conds = append(conds, fmt.Sprintf("LOWER(TRIM(%s)) IN (%s)", col, strings.Join(lits, ", ")))
			}
		}
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, "\n\t  AND "), args
}

// orderClause maps the plan's sort to SQL. Both orderings carry id ASC as
// the stable secondary key so pagination is repeatable across requests.
func orderClause(s sortOrder) string {
	switch s {
	case sortAge:
		// "age" sorts by birth date descending, youngest first.
		return "ORDER BY u.birth_date DESC, u.id ASC"
	default:
		return "ORDER BY u.created_at DESC, u.id ASC"
	}
}

// buildSearchSQL renders the page query for a plan.
func buildSearchSQL(plan QueryPlan) (string, []interface{}) {
	where, args := renderPredicates(plan)
	offset := (plan.Page - 1) * plan.Limit
	query := fmt.Sprintf("SELECT u.id%s\n\t%s\n\t%s\n\tLIMIT $%d OFFSET $%d",
		searchFromClause, where, orderClause(plan.Sort), len(args)+1, len(args)+2)
	args = append(args, plan.Limit, offset)
	return query, args
}

// buildCountSQL renders the total-count query: the same predicate set with
// no page window, so the total never depends on page or limit.
func buildCountSQL(plan QueryPlan) (string, []interface{}) {
	where, args := renderPredicates(plan)
	query := fmt.Sprintf("SELECT COUNT(*)%s\n\t%s", searchFromClause, where)
	return query, args
}

// RunSearch executes a compiled plan: one page of ordered candidate ids
// plus the window-independent total.
func (s *Store) RunSearch(ctx context.Context, plan QueryPlan) ([]int, int, error) {
	query, args := buildSearchSQL(plan)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, dependencyError("run search", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, 0, dependencyError("scan search row", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dependencyError("iterate search rows", err)
	}

	countQuery, countArgs := buildCountSQL(plan)
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, dependencyError("count search rows", err)
	}
	return ids, total, nil
}
