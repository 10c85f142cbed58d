package jobstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// pricingColumns are the columns added after the first release of the jobs
// table; older tables may lack them.
var pricingColumns = []struct{ name, ddl string }{
	{"rush_fee_enabled", "BOOLEAN DEFAULT FALSE"},
	{"rush_fee_amount", "NUMERIC(10,2) DEFAULT 0"},
	{"margin_percentage", "INTEGER DEFAULT 20"},
}

// Schema returns the statements that create table and bring an older copy
// of it up to date. When policyRole is non-empty, row-level security is
// enabled with insert and select policies for that role.
func Schema(table, policyRole string) []string {
	t := quoteIdent(table)
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  part_type         TEXT NOT NULL,
  material          TEXT NOT NULL,
  quantity          INTEGER NOT NULL CHECK (quantity > 0),
  complexity        TEXT NOT NULL,
  deadline          DATE,
  quote             NUMERIC(10,2),
  rush_fee_enabled  BOOLEAN DEFAULT FALSE,
  rush_fee_amount   NUMERIC(10,2) DEFAULT 0,
  margin_percentage INTEGER DEFAULT 20,
  created_at        TIMESTAMPTZ DEFAULT NOW()
)`, t),
	}
	for _, c := range pricingColumns {
		stmts = append(stmts, addColumnSQL(table, c.name, c.ddl))
	}
	if policyRole == "" {
		return stmts
	}

	role := quoteIdent(policyRole)
	insertPolicy := pgx.Identifier{"Allow " + policyRole + " insert"}.Sanitize()
	selectPolicy := pgx.Identifier{"Allow " + policyRole + " select"}.Sanitize()
	return append(stmts,
		fmt.Sprintf(`ALTER TABLE %s ENABLE ROW LEVEL SECURITY`, t),
		fmt.Sprintf(`DROP POLICY IF EXISTS %s ON %s`, insertPolicy, t),
		fmt.Sprintf(`DROP POLICY IF EXISTS %s ON %s`, selectPolicy, t),
		fmt.Sprintf(`CREATE POLICY %s ON %s FOR INSERT TO %s WITH CHECK (true)`, insertPolicy, t, role),
		fmt.Sprintf(`CREATE POLICY %s ON %s FOR SELECT TO %s USING (true)`, selectPolicy, t, role),
	)
}

// Setup runs Schema against db, one statement at a time.
func Setup(ctx context.Context, db Execer, table, policyRole string) error {
	for _, stmt := range Schema(table, policyRole) {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("setup %s: %w", table, err)
		}
	}
	return nil
}

func addColumnSQL(table, column, ddl string) string {
	return fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s`, quoteIdent(table), column, ddl)
}

// FixSQL suggests the statement that resolves a schema or access failure,
// or "" when there is nothing specific to suggest.
func FixSQL(table string, re *RemoteError) string {
	switch re.Kind {
	case KindSchemaMismatch:
		if re.MissingTable() {
			return "run `quote-service setup-db` to create the table"
		}
		for _, c := range pricingColumns {
			if c.name == re.Column {
				return addColumnSQL(table, c.name, c.ddl) + ";"
			}
		}
	case KindAccessDenied:
		return fmt.Sprintf(`CREATE POLICY "Allow anon insert" ON %[1]s FOR INSERT TO anon WITH CHECK (true); `+
			`CREATE POLICY "Allow anon select" ON %[1]s FOR SELECT TO anon USING (true);`, quoteIdent(table))
	}
	return ""
}

// logDiagnostic tells the operator why a write fell back and how to fix it.
func logDiagnostic(table string, re *RemoteError) {
	attrs := []any{"table", table, "kind", re.Kind.String(), "code", re.Code, "err", re.Err}
	if re.Column != "" {
		attrs = append(attrs, "column", re.Column)
	}
	if fix := FixSQL(table, re); fix != "" {
		attrs = append(attrs, "fix", fix)
	}
	slog.Warn("remote insert rejected, using local storage", attrs...)
}
