package jobstore_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"factoryflow/quote-service/internal/jobstore"
)

type recordingExecer struct {
	stmts  []string
	failAt int
}

func (r *recordingExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.stmts = append(r.stmts, sql)
	if r.failAt > 0 && len(r.stmts) == r.failAt {
		return pgconn.CommandTag{}, errors.New("boom")
	}
	return pgconn.CommandTag{}, nil
}

func TestSchema_WithoutPolicies(t *testing.T) {
	stmts := jobstore.Schema("jobs", "")
	if !strings.Contains(stmts[0], `CREATE TABLE IF NOT EXISTS "jobs"`) {
		t.Errorf("first statement = %q", stmts[0])
	}
	for _, col := range []string{"rush_fee_enabled", "rush_fee_amount", "margin_percentage"} {
		found := false
		for _, s := range stmts[1:] {
			if strings.Contains(s, "ADD COLUMN IF NOT EXISTS "+col) {
				found = true
			}
		}
		if !found {
			t.Errorf("no ADD COLUMN statement for %s", col)
		}
	}
	for _, s := range stmts {
		if strings.Contains(s, "POLICY") {
			t.Errorf("unexpected policy statement %q", s)
		}
	}
}

func TestSchema_WithPolicies(t *testing.T) {
	stmts := jobstore.Schema("jobs", "anon")
	joined := strings.Join(stmts, "\n")
	for _, want := range []string{
		"ENABLE ROW LEVEL SECURITY",
		`CREATE POLICY "Allow anon insert" ON "jobs" FOR INSERT TO "anon" WITH CHECK (true)`,
		`CREATE POLICY "Allow anon select" ON "jobs" FOR SELECT TO "anon" USING (true)`,
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("schema missing %q", want)
		}
	}
}

func TestSetup_StopsOnFirstError(t *testing.T) {
	exec := &recordingExecer{failAt: 2}
	err := jobstore.Setup(context.Background(), exec, "jobs", "anon")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(exec.stmts) != 2 {
		t.Errorf("executed %d statements, want 2", len(exec.stmts))
	}
}
