package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/labels-tracker/internal/common"
	"github.com/joseph-ayodele/labels-tracker/internal/document"
	"github.com/joseph-ayodele/labels-tracker/internal/export"
	"github.com/joseph-ayodele/labels-tracker/internal/services/labels"
)

type LabelServer struct {
	UnimplementedLabelServiceServer
	svc    *labels.Service
	export *export.Service
	logger *slog.Logger
}

// NewLabelServer wires the label service. exp may be nil when no store is
// configured; ExportLabels then fails with FailedPrecondition.
func NewLabelServer(svc *labels.Service, exp *export.Service, logger *slog.Logger) *LabelServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LabelServer{svc: svc, export: exp, logger: logger}
}

// Extract runs one extraction. The document is either a server-side path or
// an inline fragment dump under "dump".
func (s *LabelServer) Extract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	in := labels.ExtractRequest{
		Organization:  stringField(fields, "organization"),
		Path:          stringField(fields, "path"),
		Variant:       stringField(fields, "variant"),
		ScannedCode:   stringField(fields, "scanned_code"),
		ReferenceDate: stringField(fields, "reference_date"),
		Save:          fields["save"].GetBoolValue(),
		Printer:       stringField(fields, "printer"),
	}
	if dump := fields["dump"].GetStructValue(); dump != nil {
		raw, err := protojson.Marshal(dump)
		if err != nil {
			return nil, common.InvalidArgumentError("dump is not valid JSON")
		}
		doc, err := document.ReadDump(bytes.NewReader(raw))
		if err != nil {
			return nil, common.InvalidArgumentErrorf("dump: %v", err)
		}
		in.Document = doc
		if in.Path == "" {
			in.Path = "inline.json"
		}
	}
	if in.Path == "" && in.Document == nil {
		return nil, common.InvalidArgumentError("path or dump is required")
	}

	logger := common.LoggerWith(ctx, s.logger)
	out, err := s.svc.Extract(ctx, in)
	if err != nil {
		logger.Error("extract.failed", "organization", in.Organization, "path", in.Path, "err", err)
		return nil, common.ToStatus(err)
	}

	resp := map[string]any{
		"result": out.Result,
		"saved":  out.Saved,
	}
	if out.Saved {
		resp["inserted"] = out.Report.Inserted
		resp["skipped"] = out.Report.Skipped
	}
	return toStruct(resp)
}

func (s *LabelServer) ListRecords(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	org := strings.TrimSpace(stringField(req.GetFields(), "organization"))
	date := strings.TrimSpace(stringField(req.GetFields(), "date"))
	if org == "" {
		return nil, common.InvalidArgumentError("organization is required")
	}

	stored, err := s.svc.ListRecords(ctx, org, date)
	if err != nil {
		common.LoggerWith(ctx, s.logger).Error("labels.list.failed", "organization", org, "date", date, "err", err)
		return nil, common.ToStatus(err)
	}
	return toStruct(map[string]any{"records": stored})
}

// ExportLabels returns stored labels as a base64 XLSX workbook.
func (s *LabelServer) ExportLabels(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	org := strings.TrimSpace(stringField(req.GetFields(), "organization"))
	date := strings.TrimSpace(stringField(req.GetFields(), "date"))
	if err := common.ValidateAndReturnError(common.NewValidator().
		Field("organization", org, common.Required).
		Field("date", date, common.ISODate)); err != nil {
		return nil, err
	}
	if s.export == nil {
		return nil, common.FailedPreconditionError("no label store configured")
	}

	xlsx, err := s.export.ExportLabelsXLSX(ctx, org, date)
	if err != nil {
		common.LoggerWith(ctx, s.logger).Error("export.xlsx.failed", "organization", org, "err", err)
		return nil, common.ToStatus(err)
	}
	return toStruct(map[string]any{"xlsx": base64.StdEncoding.EncodeToString(xlsx)})
}

// RequestIDInterceptor tags every call with the caller's x-request-id, or a
// fresh one, so logs of one call can be correlated.
func RequestIDInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	id := ""
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get("x-request-id"); len(v) > 0 {
			id = v[0]
		}
	}
	if id == "" {
		id = uuid.NewString()
	}
	return handler(common.WithRequestID(ctx, id), req)
}

func stringField(fields map[string]*structpb.Value, key string) string {
	return strings.TrimSpace(fields[key].GetStringValue())
}

// toStruct converts v to a Struct through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}
