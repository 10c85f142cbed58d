package jobstore_test

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"factoryflow/quote-service/internal/jobstore"
	"factoryflow/quote-service/internal/model"
)

func TestBuildQuery(t *testing.T) {
	cases := []struct {
		name   string
		table  string
		filter jobstore.Filter
		where  string // "" means no WHERE clause
		tail   string
		args   []any
	}{
		{
			name:  "no filter",
			table: "jobs",
			tail:  ` FROM "jobs" ORDER BY created_at DESC`,
		},
		{
			name:   "material only",
			table:  "jobs",
			filter: jobstore.Filter{Material: "steel"},
			where:  ` WHERE material ILIKE $1 `,
			tail:   ` ORDER BY created_at DESC`,
			args:   []any{"%steel%"},
		},
		{
			name:   "part type with limit",
			table:  "jobs",
			filter: jobstore.Filter{PartType: "flange", Limit: 3},
			where:  ` WHERE part_type ILIKE $1 `,
			tail:   ` ORDER BY created_at DESC LIMIT $2`,
			args:   []any{"%flange%", 3},
		},
		{
			name:   "both fields are OR-ed",
			table:  "jobs",
			filter: jobstore.Filter{Material: "steel", PartType: "bracket", Limit: 5},
			where:  ` WHERE material ILIKE $1 OR part_type ILIKE $2 `,
			tail:   ` ORDER BY created_at DESC LIMIT $3`,
			args:   []any{"%steel%", "%bracket%", 5},
		},
		{
			name:   "wildcards in input are escaped",
			table:  "jobs",
			filter: jobstore.Filter{Material: `50%_off\x`},
			where:  ` WHERE material ILIKE $1 `,
			tail:   ` ORDER BY created_at DESC`,
			args:   []any{`%50\%\_off\\x%`},
		},
		{
			name:  "table name is quoted",
			table: `Shop "Jobs"`,
			tail:  ` FROM "Shop ""Jobs""" ORDER BY created_at DESC`,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			q, args := jobstore.BuildQuery(c.table, c.filter)
			if !strings.HasPrefix(q, "SELECT id::text, part_type, material") {
				t.Errorf("query does not select the job columns: %s", q)
			}
			if c.where == "" && strings.Contains(q, "WHERE") {
				t.Errorf("unexpected WHERE clause: %s", q)
			}
			if c.where != "" && !strings.Contains(q, c.where) {
				t.Errorf("query %q missing %q", q, c.where)
			}
			if !strings.HasSuffix(q, c.tail) {
				t.Errorf("query %q should end with %q", q, c.tail)
			}
			if len(args) != len(c.args) || (len(args) > 0 && !reflect.DeepEqual(args, c.args)) {
				t.Errorf("args = %#v, want %#v", args, c.args)
			}
		})
	}
}

// fakeRow assigns its values to Scan destinations in order; a nil value
// leaves the destination at its zero value, as a SQL NULL does for pointers.
type fakeRow []any

func (r fakeRow) Scan(dest ...any) error {
	for i, d := range dest {
		v := reflect.ValueOf(d).Elem()
		if r[i] == nil {
			v.Set(reflect.Zero(v.Type()))
			continue
		}
		v.Set(reflect.ValueOf(r[i]))
	}
	return nil
}

func ptr[T any](v T) *T { return &v }

func TestScanJob(t *testing.T) {
	created := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	deadline := time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC)

	t.Run("full row", func(t *testing.T) {
		job, err := jobstore.ScanJob(fakeRow{
			"id-1", "bracket", "steel", 10, "medium", &deadline,
			ptr(540.004), ptr(true), ptr(50.0), ptr(25), created,
		})
		if err != nil {
			t.Fatalf("ScanJob: %v", err)
		}
		if job.ID != "id-1" || job.Quantity != 10 || job.Complexity != model.ComplexityMedium {
			t.Errorf("job = %+v", job)
		}
		if job.Deadline == nil || job.Deadline.String() != "2026-11-30" {
			t.Errorf("Deadline = %v", job.Deadline)
		}
		if job.Quote != 540 || !job.RushFeeEnabled || job.RushFeeAmount != 50 || job.MarginPercentage != 25 {
			t.Errorf("pricing fields = %+v", job)
		}
		if !job.CreatedAt.Equal(created) {
			t.Errorf("CreatedAt = %v", job.CreatedAt)
		}
	})

	t.Run("legacy row with NULL pricing columns", func(t *testing.T) {
		job, err := jobstore.ScanJob(fakeRow{
			"id-2", "flange", "aluminum", 3, "simple", nil,
			nil, nil, nil, nil, created,
		})
		if err != nil {
			t.Fatalf("ScanJob: %v", err)
		}
		if job.Deadline != nil {
			t.Errorf("Deadline = %v, want nil", job.Deadline)
		}
		if job.Quote != 0 || job.RushFeeEnabled || job.RushFeeAmount != 0 {
			t.Errorf("NULL columns should read as zero: %+v", job)
		}
		if job.MarginPercentage != model.DefaultMarginPercentage {
			t.Errorf("MarginPercentage = %d, want default %d", job.MarginPercentage, model.DefaultMarginPercentage)
		}
	})
}
