package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
)

// CorrectionRepository stores the append-only correction log. ListByTicket returns newest first.
type CorrectionRepository interface {
	Create(ctx context.Context, correction *domain.Correction) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Correction, error)
}

// FixedIssueFilter narrows fixed-issue listings. Empty fields are ignored; Limit <= 0 returns every match.
type FixedIssueFilter struct {
	Category string
	Priority string
	FixedBy  string
	Limit    int
	Offset   int
}

// FixedIssueRepository stores archival snapshots of completed tickets.
type FixedIssueRepository interface {
	Create(ctx context.Context, issue *domain.FixedIssue) error
	List(ctx context.Context, filter FixedIssueFilter) ([]domain.FixedIssue, int, error)
}

type correctionRepository struct {
	db DBTX
}

// NewCorrectionRepository builds repository.
func NewCorrectionRepository(db DBTX) CorrectionRepository {
	return &correctionRepository{db: db}
}

func (r *correctionRepository) Create(ctx context.Context, c *domain.Correction) error {
	const query = `
        INSERT INTO ticket_corrections (id, ticket_id, old_category, new_category, old_priority, new_priority,
            corrected_by, corrected_at, notes)
        VALUES ($1,$2,NULLIF($3,''),NULLIF($4,''),NULLIF($5,''),NULLIF($6,''),$7,$8,$9)`
	_, err := r.db.Exec(ctx, query,
		c.ID,
		c.TicketID,
		c.OldCategory,
		c.NewCategory,
		c.OldPriority,
		c.NewPriority,
		c.CorrectedBy,
		c.CorrectedAt,
		c.Notes,
	)
	return err
}

func (r *correctionRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Correction, error) {
	const query = `
        SELECT id, ticket_id, COALESCE(old_category, ''), COALESCE(new_category, ''),
               COALESCE(old_priority, ''), COALESCE(new_priority, ''), corrected_by, corrected_at, notes
        FROM ticket_corrections WHERE ticket_id=$1 ORDER BY corrected_at DESC, id ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Correction
	for rows.Next() {
		var c domain.Correction
		if err := rows.Scan(
			&c.ID,
			&c.TicketID,
			&c.OldCategory,
			&c.NewCategory,
			&c.OldPriority,
			&c.NewPriority,
			&c.CorrectedBy,
			&c.CorrectedAt,
			&c.Notes,
		); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

type fixedIssueRepository struct {
	db DBTX
}

// NewFixedIssueRepository builds repository.
func NewFixedIssueRepository(db DBTX) FixedIssueRepository {
	return &fixedIssueRepository{db: db}
}

func (r *fixedIssueRepository) Create(ctx context.Context, issue *domain.FixedIssue) error {
	const query = `
        INSERT INTO fixed_issues (id, ticket_id, title, description, category, priority, confidence,
            status, fixed_by, fixed_at, notes)
        VALUES ($1,$2,$3,$4,NULLIF($5,''),NULLIF($6,''),$7,$8,$9,$10,$11)`
	_, err := r.db.Exec(ctx, query,
		issue.ID,
		issue.TicketID,
		issue.Title,
		issue.Description,
		issue.Category,
		issue.Priority,
		issue.Confidence,
		issue.Status,
		issue.FixedBy,
		issue.FixedAt,
		issue.Notes,
	)
	return err
}

func (r *fixedIssueRepository) List(ctx context.Context, filter FixedIssueFilter) ([]domain.FixedIssue, int, error) {
	var where whereBuilder
	if filter.Category != "" {
		where.add("category=$%d", filter.Category)
	}
	if filter.Priority != "" {
		where.add("priority=$%d", filter.Priority)
	}
	if filter.FixedBy != "" {
		where.add("fixed_by=$%d", filter.FixedBy)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM fixed_issues`+where.sql(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
        SELECT id, ticket_id, title, description, COALESCE(category, ''), COALESCE(priority, ''), confidence,
               status, fixed_by, fixed_at, notes
        FROM fixed_issues` + where.sql() + ` ORDER BY fixed_at DESC, id ASC` + pageClause(filter.Limit, filter.Offset)
	rows, err := r.db.Query(ctx, query, where.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	issues, err := scanFixedIssues(rows)
	if err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

func scanFixedIssues(rows pgx.Rows) ([]domain.FixedIssue, error) {
	var result []domain.FixedIssue
	for rows.Next() {
		var issue domain.FixedIssue
		if err := rows.Scan(
			&issue.ID,
			&issue.TicketID,
			&issue.Title,
			&issue.Description,
			&issue.Category,
			&issue.Priority,
			&issue.Confidence,
			&issue.Status,
			&issue.FixedBy,
			&issue.FixedAt,
			&issue.Notes,
		); err != nil {
			return nil, err
		}
		result = append(result, issue)
	}
	return result, rows.Err()
}
