package grpcserver_test

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"factoryflow/quote-service/internal/db"
	"factoryflow/quote-service/internal/grpcserver"
	"factoryflow/quote-service/internal/jobstore"
	"factoryflow/quote-service/internal/model"
	"factoryflow/quote-service/internal/pricing"
	"factoryflow/quote-service/internal/quote"
	"factoryflow/quote-service/internal/settings"
	"factoryflow/quote-service/internal/suggest"
)

type fakeRemote struct {
	insertErr error
}

func (f *fakeRemote) Probe(ctx context.Context, table string) error { return nil }

func (f *fakeRemote) Insert(ctx context.Context, table string, job model.Job) (model.Job, error) {
	if f.insertErr != nil {
		return model.Job{}, f.insertErr
	}
	job.ID = "remote-1"
	return job, nil
}

func (f *fakeRemote) Query(ctx context.Context, table string, flt jobstore.Filter) ([]model.Job, error) {
	return []model.Job{{
		ID: "remote-0", PartType: "bracket", Material: "steel", Quantity: 4,
		Complexity: model.ComplexitySimple, Quote: 120,
		CreatedAt: time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC),
	}}, nil
}

// newClient serves a QuoteService over bufconn.
func newClient(t *testing.T, remote jobstore.Remote) *grpcserver.Client {
	t.Helper()
	bdb, err := db.OpenLocalStore(filepath.Join(t.TempDir(), "grpc.db"))
	if err != nil {
		t.Fatalf("OpenLocalStore: %v", err)
	}
	t.Cleanup(func() { bdb.Close() })
	local, _ := jobstore.NewLocal(bdb)
	jobs := jobstore.New(remote, local)
	st, _ := settings.New(bdb, model.DefaultPricingConfig())
	svc := quote.NewService(quote.Deps{
		Calculator: pricing.NewCalculator(pricing.FixedNoise(1.0)),
		Jobs:       jobs,
		Table:      "jobs",
		Settings:   st,
		Suggester: suggest.NewSuggester(jobs, "jobs", nil, suggest.WithEstimateNoise(func(bool) pricing.Noise {
			return pricing.FixedNoise(1.0)
		})),
	})

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	grpcserver.Register(srv, grpcserver.NewServer(svc))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("grpc.NewClient: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return grpcserver.NewClient(conn)
}

func steelRequest(t *testing.T) *structpb.Struct {
	t.Helper()
	req, err := structpb.NewStruct(map[string]any{
		"partType":   "bracket",
		"material":   "steel",
		"quantity":   10,
		"complexity": "medium",
	})
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func TestPreview(t *testing.T) {
	c := newClient(t, &fakeRemote{})
	out, err := c.Preview(context.Background(), steelRequest(t))
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if q := out.Fields["quote"].GetNumberValue(); q != 540 {
		t.Errorf("quote = %v, want 540", q)
	}
	bd := out.Fields["breakdown"].GetStructValue()
	if bd.Fields["randomFactor"].GetNumberValue() != 1 {
		t.Errorf("breakdown = %v", bd)
	}
}

func TestPreview_InvalidArgument(t *testing.T) {
	c := newClient(t, &fakeRemote{})
	req, _ := structpb.NewStruct(map[string]any{"material": "steel", "quantity": "-2"})
	_, err := c.Preview(context.Background(), req)
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("code = %v, want InvalidArgument (%v)", status.Code(err), err)
	}
}

func TestSubmit(t *testing.T) {
	c := newClient(t, &fakeRemote{})
	out, err := c.Submit(context.Background(), steelRequest(t))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.Fields["status"].GetStringValue() != quote.StatusSuccess {
		t.Errorf("out = %v", out)
	}
	job := out.Fields["job"].GetStructValue()
	if job.Fields["id"].GetStringValue() != "remote-1" {
		t.Errorf("job = %v", job)
	}
	if _, err := time.Parse(time.RFC3339, job.Fields["created_at"].GetStringValue()); err != nil {
		t.Errorf("created_at: %v", err)
	}
}

func TestSubmit_DemoMode(t *testing.T) {
	c := newClient(t, nil)
	out, err := c.Submit(context.Background(), steelRequest(t))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !out.Fields["demoMode"].GetBoolValue() || out.Fields["status"].GetStringValue() != quote.StatusWarning {
		t.Errorf("out = %v", out)
	}

	local, _ := structpb.NewStruct(map[string]any{"local": true})
	list, err := c.ListJobs(context.Background(), local)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if n := len(list.Fields["jobs"].GetListValue().GetValues()); n != 1 {
		t.Errorf("local jobs = %d, want 1", n)
	}
}

func TestSubmit_HardFailureCarriesQuote(t *testing.T) {
	c := newClient(t, &fakeRemote{insertErr: &pgconn.PgError{Code: "XX000"}})
	_, err := c.Submit(context.Background(), steelRequest(t))
	st := status.Convert(err)
	if st.Code() != codes.Unavailable {
		t.Fatalf("code = %v, want Unavailable", st.Code())
	}
	details := st.Details()
	if len(details) != 1 {
		t.Fatalf("details = %v", details)
	}
	sub, ok := details[0].(*structpb.Struct)
	if !ok {
		t.Fatalf("detail type %T", details[0])
	}
	if sub.Fields["quote"].GetNumberValue() != 540 {
		t.Errorf("detail = %v", sub)
	}
}

func TestListJobs_Remote(t *testing.T) {
	c := newClient(t, &fakeRemote{})
	out, err := c.ListJobs(context.Background(), &structpb.Struct{})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	jobs := out.Fields["jobs"].GetListValue().GetValues()
	if len(jobs) != 1 {
		t.Fatalf("jobs = %v", jobs)
	}
	job := jobs[0].GetStructValue()
	if job.Fields["created_at"].GetStringValue() != "2026-10-01T08:00:00Z" {
		t.Errorf("created_at = %v", job.Fields["created_at"])
	}
}

func TestSuggest(t *testing.T) {
	c := newClient(t, &fakeRemote{})
	out, err := c.Suggest(context.Background(), steelRequest(t))
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if out.Fields["source"].GetStringValue() != suggest.SourceEstimate || out.Fields["amount"].GetNumberValue() != 450 {
		t.Errorf("out = %v", out)
	}
	if n := len(out.Fields["similarJobs"].GetListValue().GetValues()); n != 1 {
		t.Errorf("similarJobs = %d, want 1", n)
	}
}
