package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryBuilder_AddCondition(t *testing.T) {
	qb := NewQueryBuilder()

	qb.AddCondition(columnBudgetRange, "10k-25k")

	assert.Equal(t, "WHERE budget_range = $1", qb.WhereClause())
	assert.Equal(t, []interface{}{"10k-25k"}, qb.Args())
	assert.Equal(t, 2, qb.NextArgNum())
}

func TestQueryBuilder_AddArrayContains(t *testing.T) {
	qb := NewQueryBuilder()

	qb.AddCondition(columnBudgetRange, "5k-10k")
	qb.AddArrayContains(columnServices, "seo")

	assert.Equal(t, "WHERE budget_range = $1 AND $2 = ANY(services)", qb.WhereClause())
	assert.Equal(t, []interface{}{"5k-10k", "seo"}, qb.Args())
	assert.Equal(t, 3, qb.NextArgNum())
}

func TestQueryBuilder_AddTimeRange(t *testing.T) {
	tests := []struct {
		name           string
		since          string
		until          string
		wantConditions int
		wantErr        bool
	}{
		{name: "both bounds", since: "2025-05-01T00:00:00Z", until: "2025-05-31T23:59:59Z", wantConditions: 2},
		{name: "only since", since: "2025-05-01T00:00:00Z", wantConditions: 1},
		{name: "only until", until: "2025-05-31T23:59:59Z", wantConditions: 1},
		{name: "neither", wantConditions: 0},
		{name: "invalid since", since: "yesterday", wantErr: true},
		{name: "invalid until", until: "2025-05-31", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qb := NewQueryBuilder()
			err := qb.AddTimeRange(columnReceivedAt, tt.since, tt.until)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidQuery)
				return
			}
			assert.NoError(t, err)
			assert.Len(t, qb.Args(), tt.wantConditions)
		})
	}
}

func TestQueryBuilder_AddFullTextSearch(t *testing.T) {
	qb := NewQueryBuilder()
	qb.AddCondition(columnBudgetRange, "50k-plus")

	n := qb.AddFullTextSearch(searchDocument, "online & store")

	assert.Equal(t, 2, n)
	assert.Contains(t, qb.WhereClause(), "to_tsvector('english', company || ' ' || project_goals)")
	assert.Contains(t, qb.WhereClause(), "to_tsquery('english', $2)")
	assert.Equal(t, []interface{}{"50k-plus", "online & store"}, qb.Args())
}

func TestQueryBuilder_WhereClause_Empty(t *testing.T) {
	qb := NewQueryBuilder()

	assert.Equal(t, "", qb.WhereClause())
	assert.Empty(t, qb.Args())
}

func TestFilterLeads(t *testing.T) {
	qb, err := filterLeads(leadParams("web", "10k-25k", "2025-05-01T00:00:00Z", "2025-05-31T23:59:59Z"))
	require.NoError(t, err)

	where := qb.WhereClause()
	assert.Contains(t, where, "$1 = ANY(services)")
	assert.Contains(t, where, "budget_range = $2")
	assert.Contains(t, where, "received_at >= $3")
	assert.Contains(t, where, "received_at <= $4")
	assert.Len(t, qb.Args(), 4)
	assert.Equal(t, 5, qb.NextArgNum())
}

func TestFilterLeads_InvalidTime(t *testing.T) {
	_, err := filterLeads(leadParams("", "", "last week", ""))
	assert.ErrorIs(t, err, ErrInvalidQuery)
}
