package database

import (
	"agencysite/models"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// InsertLead archives one lead. The id comes from the caller so the row
// matches the id returned to the client.
func (db *DB) InsertLead(ctx context.Context, lead models.Lead) error {
	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	services := lead.Services
	if services == nil {
		services = []string{}
	}

	_, err := db.Pool.Exec(ctx, query,
		lead.ID, lead.Name, lead.Email, lead.Company, lead.Phone, services,
		lead.ProjectGoals, lead.TargetAudience, lead.LaunchDate, lead.BudgetRange,
		lead.ExistingWebsite, lead.HostingPreference, lead.RequiredIntegrations,
		lead.NotificationMessageID, lead.ConfirmationMessageID, lead.ConfirmationSent,
		lead.ReceivedAt)
	if err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}

	db.log.Debug("lead archived", zap.Stringer("id", lead.ID), zap.String("company", lead.Company))
	return nil
}

func (db *DB) GetLead(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	lead, err := scanLead(db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	return lead, nil
}

func (db *DB) DeleteLead(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// QueryLeads lists archived leads newest first. A non-empty Search
// delegates to SearchLeads.
func (db *DB) QueryLeads(ctx context.Context, params models.LeadQueryParams) ([]models.Lead, int64, error) {
	start := time.Now()
	defer func() {
		db.log.Debug("QueryLeads",
			zap.Duration("duration", time.Since(start)),
			zap.String("service", params.Service),
			zap.String("budget", params.Budget),
			zap.String("q", params.Search))
	}()

	if params.Search != "" {
		return db.SearchLeads(ctx, params)
	}

	limit := validateLimit(params.Limit, defaultLimit, maxLimit)
	offset := validateOffset(params.Offset)

	qb, err := filterLeads(params)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s,
			COUNT(*) OVER() as total_count
		FROM leads
		%s
		ORDER BY %s DESC, %s
		LIMIT $%d OFFSET $%d
	`, leadColumns, qb.WhereClause(), columnReceivedAt, columnID, qb.NextArgNum(), qb.NextArgNum()+1)

	args := append(qb.Args(), limit, offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	return scanLeads(rows, false)
}

func filterLeads(params models.LeadQueryParams) (*QueryBuilder, error) {
	qb := NewQueryBuilder()
	if params.Service != "" {
		qb.AddArrayContains(columnServices, params.Service)
	}
	if params.Budget != "" {
		qb.AddCondition(columnBudgetRange, params.Budget)
	}
	if err := qb.AddTimeRange(columnReceivedAt, params.Since, params.Until); err != nil {
		return nil, err
	}
	return qb, nil
}

// Helper functions

func scanLead(row pgx.Row) (*models.Lead, error) {
	var lead models.Lead
	err := row.Scan(leadDest(&lead)...)
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func leadDest(lead *models.Lead) []interface{} {
	return []interface{}{
		&lead.ID, &lead.Name, &lead.Email, &lead.Company, &lead.Phone, &lead.Services,
		&lead.ProjectGoals, &lead.TargetAudience, &lead.LaunchDate, &lead.BudgetRange,
		&lead.ExistingWebsite, &lead.HostingPreference, &lead.RequiredIntegrations,
		&lead.NotificationMessageID, &lead.ConfirmationMessageID, &lead.ConfirmationSent,
		&lead.ReceivedAt,
	}
}

func scanLeads(rows pgx.Rows, withRank bool) ([]models.Lead, int64, error) {
	leads := []models.Lead{}
	var total int64

	for rows.Next() {
		var lead models.Lead
		dest := leadDest(&lead)

		if withRank {
			var rank float64
			dest = append(dest, &rank, &total)
			if err := rows.Scan(dest...); err != nil {
				return nil, 0, fmt.Errorf("failed to scan lead: %w", err)
			}
			lead.Rank = &rank
		} else {
			dest = append(dest, &total)
			if err := rows.Scan(dest...); err != nil {
				return nil, 0, fmt.Errorf("failed to scan lead: %w", err)
			}
		}

		leads = append(leads, lead)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating leads: %w", err)
	}

	return leads, total, nil
}
