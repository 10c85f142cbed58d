package jobstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"factoryflow/quote-service/internal/model"
)

// Filter narrows a job query. Material and PartType are case-insensitive
// substring matches combined with OR; empty fields are ignored.
type Filter struct {
	Material string
	PartType string
	Limit    int
}

// Remote is the hosted relational table behind the store.
type Remote interface {
	// Probe performs a lightweight read against table.
	Probe(ctx context.Context, table string) error
	// Insert stores job and returns the row as written, with its id.
	Insert(ctx context.Context, table string, job model.Job) (model.Job, error)
	// Query returns jobs newest first.
	Query(ctx context.Context, table string, f Filter) ([]model.Job, error)
}

// PostgresRemote implements Remote over a pgx pool.
type PostgresRemote struct {
	pool *pgxpool.Pool
}

// NewPostgresRemote returns a Remote backed by pool.
func NewPostgresRemote(pool *pgxpool.Pool) *PostgresRemote {
	return &PostgresRemote{pool: pool}
}

// id is cast to text so both uuid and serial keys scan into a string.
const jobColumns = `id::text, part_type, material, quantity, complexity, deadline,
	quote, rush_fee_enabled, rush_fee_amount, margin_percentage, created_at`

// Probe implements Remote.
func (r *PostgresRemote) Probe(ctx context.Context, table string) error {
	_, err := r.pool.Exec(ctx, fmt.Sprintf(`SELECT id FROM %s LIMIT 1`, quoteIdent(table)))
	return err
}

// Insert implements Remote.
func (r *PostgresRemote) Insert(ctx context.Context, table string, job model.Job) (model.Job, error) {
	var deadline *time.Time
	if job.Deadline != nil {
		deadline = &job.Deadline.Time
	}

	row := r.pool.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO %s
		   (part_type, material, quantity, complexity, deadline, quote,
		    rush_fee_enabled, rush_fee_amount, margin_percentage, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING %s`, quoteIdent(table), jobColumns),
		job.PartType, job.Material, job.Quantity, string(job.Complexity), deadline,
		job.Quote.Float64(), job.RushFeeEnabled, job.RushFeeAmount.Float64(),
		job.MarginPercentage, job.CreatedAt,
	)
	saved, err := scanJob(row)
	if err != nil {
		return model.Job{}, err
	}
	return saved, nil
}

// Query implements Remote.
func (r *PostgresRemote) Query(ctx context.Context, table string, f Filter) ([]model.Job, error) {
	q, args := buildQuery(table, f)
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]model.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// buildQuery renders the SELECT for f and its positional arguments.
func buildQuery(table string, f Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Material != "" {
		args = append(args, "%"+escapeLike(f.Material)+"%")
		conds = append(conds, fmt.Sprintf("material ILIKE $%d", len(args)))
	}
	if f.PartType != "" {
		args = append(args, "%"+escapeLike(f.PartType)+"%")
		conds = append(conds, fmt.Sprintf("part_type ILIKE $%d", len(args)))
	}

	q := fmt.Sprintf(`SELECT %s FROM %s`, jobColumns, quoteIdent(table))
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " OR ")
	}
	q += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return q, args
}

func scanJob(row pgx.Row) (model.Job, error) {
	var (
		j                model.Job
		complexity       string
		deadline         *time.Time
		quote, rushFee   *float64
		rushFeeEnabled   *bool
		marginPercentage *int
	)
	if err := row.Scan(
		&j.ID, &j.PartType, &j.Material, &j.Quantity, &complexity, &deadline,
		&quote, &rushFeeEnabled, &rushFee, &marginPercentage, &j.CreatedAt,
	); err != nil {
		return model.Job{}, err
	}

	// Rows written before the pricing columns existed carry NULLs.
	j.Complexity = model.Complexity(complexity)
	if deadline != nil {
		d := model.NewDate(*deadline)
		j.Deadline = &d
	}
	if quote != nil {
		j.Quote = model.RoundMoney(*quote)
	}
	if rushFeeEnabled != nil {
		j.RushFeeEnabled = *rushFeeEnabled
	}
	if rushFee != nil {
		j.RushFeeAmount = model.RoundMoney(*rushFee)
	}
	j.MarginPercentage = model.DefaultMarginPercentage
	if marginPercentage != nil {
		j.MarginPercentage = *marginPercentage
	}
	return j, nil
}

func quoteIdent(table string) string {
	return pgx.Identifier{table}.Sanitize()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
