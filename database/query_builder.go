package database

import (
	"fmt"
	"strings"
	"time"
)

const (
	columnID          = "id"
	columnServices    = "services"
	columnBudgetRange = "budget_range"
	columnReceivedAt  = "received_at"

	// searchDocument must match the expression behind idx_leads_search.
	searchDocument = "company || ' ' || project_goals"
)

const leadColumns = `id, name, email, company, phone, services, project_goals, target_audience,
	launch_date, budget_range, existing_website, hosting_preference, required_integrations,
	notification_message_id, confirmation_message_id, confirmation_sent, received_at`

// QueryBuilder helps build WHERE clauses safely
type QueryBuilder struct {
	conditions []string
	args       []interface{}
	argCount   int
}

func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{
		conditions: []string{},
		args:       []interface{}{},
		argCount:   1,
	}
}

func (qb *QueryBuilder) AddCondition(column string, value interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf("%s = $%d", column, qb.argCount))
	qb.args = append(qb.args, value)
	qb.argCount++
}

// AddArrayContains matches rows whose array column holds value.
func (qb *QueryBuilder) AddArrayContains(column string, value interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf("$%d = ANY(%s)", qb.argCount, column))
	qb.args = append(qb.args, value)
	qb.argCount++
}

func (qb *QueryBuilder) AddTimeRange(column, since, until string) error {
	if since != "" {
		sinceTime, err := parseRFC3339(since)
		if err != nil {
			return fmt.Errorf("%w: invalid since: %v", ErrInvalidQuery, err)
		}
		qb.conditions = append(qb.conditions, fmt.Sprintf("%s >= $%d", column, qb.argCount))
		qb.args = append(qb.args, sinceTime)
		qb.argCount++
	}

	if until != "" {
		untilTime, err := parseRFC3339(until)
		if err != nil {
			return fmt.Errorf("%w: invalid until: %v", ErrInvalidQuery, err)
		}
		qb.conditions = append(qb.conditions, fmt.Sprintf("%s <= $%d", column, qb.argCount))
		qb.args = append(qb.args, untilTime)
		qb.argCount++
	}

	return nil
}

// AddFullTextSearch adds a tsquery match against document and returns the
// placeholder number holding the query, for reuse in ts_rank.
func (qb *QueryBuilder) AddFullTextSearch(document, searchQuery string) int {
	n := qb.argCount
	qb.conditions = append(qb.conditions,
		fmt.Sprintf("to_tsvector('english', %s) @@ to_tsquery('english', $%d)", document, n))
	qb.args = append(qb.args, searchQuery)
	qb.argCount++
	return n
}

func (qb *QueryBuilder) WhereClause() string {
	if len(qb.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(qb.conditions, " AND ")
}

func (qb *QueryBuilder) Args() []interface{} {
	return qb.args
}

func (qb *QueryBuilder) NextArgNum() int {
	return qb.argCount
}

// Helper functions

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func validateLimit(limit, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func validateOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
