package database

import (
	"agencysite/models"
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SearchQueryParser turns free text into a PostgreSQL tsquery where every
// word must match.
type SearchQueryParser struct {
	minLength int
	maxLength int
}

// NewSearchQueryParser accepts queries between 3 and 200 characters.
func NewSearchQueryParser() *SearchQueryParser {
	return &SearchQueryParser{
		minLength: 3,
		maxLength: 200,
	}
}

// Parse converts a search query to tsquery form.
//
//	"Online Store" → "online & store"
//	"a b redesign" → "redesign"
func (p *SearchQueryParser) Parse(query string) (string, error) {
	query = strings.TrimSpace(query)

	if len(query) < p.minLength {
		return "", fmt.Errorf("%w: search query must be at least %d characters", ErrInvalidQuery, p.minLength)
	}

	if len(query) > p.maxLength {
		return "", fmt.Errorf("%w: search query too long (max %d characters)", ErrInvalidQuery, p.maxLength)
	}

	query = p.sanitize(query)

	words := strings.Fields(query)
	if len(words) == 0 {
		return "", fmt.Errorf("%w: search query is empty", ErrInvalidQuery)
	}

	validWords := p.filterValidWords(words)
	if len(validWords) == 0 {
		return "", fmt.Errorf("%w: no valid search terms", ErrInvalidQuery)
	}

	return strings.Join(validWords, " & "), nil
}

var tsqueryOperators = strings.NewReplacer(
	`"`, " ",
	"'", " ",
	"(", " ",
	")", " ",
	"&", " ",
	"|", " ",
	"!", " ",
	":", " ",
	"*", " ",
	"<", " ",
	">", " ",
	`\`, " ",
)

func (p *SearchQueryParser) sanitize(query string) string {
	return tsqueryOperators.Replace(query)
}

func (p *SearchQueryParser) filterValidWords(words []string) []string {
	valid := []string{}
	for _, word := range words {
		if len(word) >= 2 {
			valid = append(valid, strings.ToLower(word))
		}
	}
	return valid
}

// SearchLeads ranks leads by how well company and project goals match
// params.Search, then by recency. The other filters still apply.
func (db *DB) SearchLeads(ctx context.Context, params models.LeadQueryParams) ([]models.Lead, int64, error) {
	start := time.Now()
	defer func() {
		db.log.Debug("SearchLeads",
			zap.String("q", params.Search),
			zap.Duration("duration", time.Since(start)))
	}()

	tsQuery, err := NewSearchQueryParser().Parse(params.Search)
	if err != nil {
		return nil, 0, err
	}

	limit := validateLimit(params.Limit, defaultLimit, maxLimit)
	offset := validateOffset(params.Offset)

	qb, err := filterLeads(params)
	if err != nil {
		return nil, 0, err
	}
	queryArg := qb.AddFullTextSearch(searchDocument, tsQuery)

	// All user input is parameterized; the format verbs only carry column names.
	query := fmt.Sprintf(`
		SELECT %s,
			ts_rank(to_tsvector('english', %s), to_tsquery('english', $%d)) as rank,
			COUNT(*) OVER() as total_count
		FROM leads
		%s
		ORDER BY rank DESC, %s DESC
		LIMIT $%d OFFSET $%d
	`, leadColumns, searchDocument, queryArg, qb.WhereClause(), columnReceivedAt,
		qb.NextArgNum(), qb.NextArgNum()+1)

	args := append(qb.Args(), limit, offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search leads: %w", err)
	}
	defer rows.Close()

	return scanLeads(rows, true)
}
