// Package grpcserver implements the QuoteService gRPC server.
//
// It delegates all business logic to quote.Service and handles only the
// gRPC transport concerns: error mapping and conversion between the domain
// types and google.protobuf.Struct messages.
package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"factoryflow/quote-service/internal/jobstore"
	"factoryflow/quote-service/internal/model"
	"factoryflow/quote-service/internal/pricing"
	"factoryflow/quote-service/internal/quote"
	"factoryflow/quote-service/internal/settings"
)

// Server implements QuoteServiceServer.
type Server struct {
	svc *quote.Service
}

// NewServer constructs a gRPC Server backed by the given quote.Service.
func NewServer(svc *quote.Service) *Server {
	return &Server{svc: svc}
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// Preview prices a job without saving it.
func (s *Server) Preview(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := inputFromStruct(req)
	if err != nil {
		return nil, err
	}
	res, err := s.svc.Preview(ctx, in)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(res)
}

// Submit prices and saves a job. When the save fails the status carries the
// computed submission as a detail.
func (s *Server) Submit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := inputFromStruct(req)
	if err != nil {
		return nil, err
	}
	sub, err := s.svc.Submit(ctx, in)
	if err != nil {
		if sub == nil {
			return nil, toGRPCError(err)
		}
		detail, cerr := submissionToStruct(sub)
		if cerr != nil {
			return nil, cerr
		}
		st, derr := status.New(codes.Unavailable, sub.Message).WithDetails(detail)
		if derr != nil {
			return nil, status.Error(codes.Unavailable, sub.Message)
		}
		return nil, st.Err()
	}
	return submissionToStruct(sub)
}

// ListJobs returns the remote history, or the demo-mode records when the
// request sets "local": true.
func (s *Server) ListJobs(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req.GetFields()["local"].GetBoolValue() {
		jobs, err := s.svc.LocalHistory()
		if err != nil {
			return nil, toGRPCError(err)
		}
		return jobsResponse(jobs, "")
	}
	h := s.svc.History(ctx)
	return jobsResponse(h.Jobs, h.Warning)
}

// Suggest returns an AI suggestion or the fallback estimate.
func (s *Server) Suggest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := inputFromStruct(req)
	if err != nil {
		return nil, err
	}
	sg, err := s.svc.Suggest(ctx, in)
	if err != nil {
		return nil, toGRPCError(err)
	}
	out, err := toMap(sg)
	if err != nil {
		return nil, err
	}
	list, err := jobsToList(sg.SimilarJobs)
	if err != nil {
		return nil, err
	}
	out["similarJobs"] = list
	return newStruct(out)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	var ve *pricing.ValidationError
	if errors.As(err, &ve) {
		return status.Error(codes.InvalidArgument, ve.Error())
	}
	if errors.Is(err, settings.ErrInvalid) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	var re *jobstore.RemoteError
	if errors.As(err, &re) || errors.Is(err, jobstore.ErrFallbackFailed) {
		return status.Error(codes.Unavailable, err.Error())
	}
	slog.Warn("grpc request failed", "err", err)
	return status.Error(codes.Internal, "internal server error")
}

func inputFromStruct(req *structpb.Struct) (pricing.Input, error) {
	var in pricing.Input
	raw, err := req.MarshalJSON()
	if err != nil {
		return in, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, status.Error(codes.InvalidArgument, err.Error())
	}
	return in, nil
}

func submissionToStruct(sub *quote.Submission) (*structpb.Struct, error) {
	out, err := toMap(sub)
	if err != nil {
		return nil, err
	}
	if sub.Job != nil {
		job, err := jobToMap(*sub.Job)
		if err != nil {
			return nil, err
		}
		out["job"] = job
	}
	return newStruct(out)
}

func jobsResponse(jobs []model.Job, warning string) (*structpb.Struct, error) {
	list, err := jobsToList(jobs)
	if err != nil {
		return nil, err
	}
	out := map[string]any{"jobs": list}
	if warning != "" {
		out["warning"] = warning
	}
	return newStruct(out)
}

func jobsToList(jobs []model.Job) ([]any, error) {
	list := make([]any, 0, len(jobs))
	for _, j := range jobs {
		m, err := jobToMap(j)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, nil
}

// jobToMap converts a job to its JSON shape with created_at as an RFC 3339
// timestamp.
func jobToMap(j model.Job) (map[string]any, error) {
	m, err := toMap(j)
	if err != nil {
		return nil, err
	}
	if !j.CreatedAt.IsZero() {
		m["created_at"] = timestampString(j.CreatedAt)
	}
	return m, nil
}

func timestampString(t time.Time) string {
	b, err := protojson.Marshal(timestamppb.New(t))
	if err != nil {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return strings.Trim(string(b), `"`)
}

func toMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return m, nil
}

func toStruct(v any) (*structpb.Struct, error) {
	m, err := toMap(v)
	if err != nil {
		return nil, err
	}
	return newStruct(m)
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return st, nil
}
