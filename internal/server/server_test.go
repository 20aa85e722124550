package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"log/slog"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/labels-tracker/constants"
	"github.com/joseph-ayodele/labels-tracker/internal/common"
	"github.com/joseph-ayodele/labels-tracker/internal/export"
	"github.com/joseph-ayodele/labels-tracker/internal/regions"
	"github.com/joseph-ayodele/labels-tracker/internal/repository"
	"github.com/joseph-ayodele/labels-tracker/internal/services/labels"
)

// labelDump builds an inline fragment dump with one fragment centered in
// each named slot-1 region of the primary layout.
func labelDump(t *testing.T, texts map[constants.Field]string) *structpb.Value {
	t.Helper()
	layout := regions.DefaultCatalog().Primary()
	var items []any
	for field, text := range texts {
		r, ok := layout.Find(field, 1)
		if !ok {
			t.Fatalf("no region for %s", field)
		}
		x := r.X/1.5 + 2
		y := 792 - (r.Y+r.Height/2)/1.5 - 3
		items = append(items, map[string]any{
			"str":       text,
			"transform": []any{1.0, 0.0, 0.0, 1.0, x, y},
			"width":     10.0,
			"height":    6.0,
		})
	}
	v, err := structpb.NewValue(map[string]any{
		"pages": []any{map[string]any{
			"viewport": map[string]any{"scale": 1.5, "mediaBox": []any{0.0, 0.0, 612.0, 792.0}},
			"items":    items,
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func newTestServer(t *testing.T) *LabelServer {
	t.Helper()
	ctx := context.Background()
	db, err := ConnectDB(ctx, common.DatabaseConfig{SQLitePath: ":memory:", ConnectAttempts: 1}, slog.Default())
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	t.Cleanup(func() { CloseDB(db, slog.Default()) })

	repo := repository.NewLabelRepository(db, nil)
	cfg := common.ExtractionConfig{RenderScale: 1.5, LineTolerance: 2, DefaultRegion: constants.DefaultRegionName}
	svc := labels.NewService(regions.DefaultCatalog(), repo, cfg, nil)
	return NewLabelServer(svc, export.NewService(repo, nil), nil)
}

func dial(t *testing.T, srv *LabelServer) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer(grpc.UnaryInterceptor(RequestIDInterceptor))
	RegisterLabelServiceServer(gs, srv)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sampleRequest(t *testing.T) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"organization":   structpb.NewStringValue("tal"),
		"reference_date": structpb.NewStringValue("2025-01-01"),
		"save":           structpb.NewBoolValue(true),
		"printer":        structpb.NewStringValue("Ana"),
		"dump": labelDump(t, map[constants.Field]string{
			constants.FieldDeliveryDate: "Entregar: Viernes 7/feb antes de 14:00 hs",
			constants.FieldBarcode:      "ABC-111",
			constants.FieldClientInfo:   "Ana (ana) Domicilio: Calle 1 CP: 78000",
		}),
	}}
}

func firstRecord(t *testing.T, resp *structpb.Struct) map[string]any {
	t.Helper()
	records := resp.AsMap()["result"].(map[string]any)["records"].([]any)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	return records[0].(map[string]any)
}

func TestExtractSaveAndList(t *testing.T) {
	ctx := context.Background()
	conn := dial(t, newTestServer(t))

	resp := &structpb.Struct{}
	if err := conn.Invoke(ctx, LabelService_Extract_FullMethodName, sampleRequest(t), resp); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	rec := firstRecord(t, resp)
	if rec["folio"] != 1.0 || rec["code"] != "111" || rec["delivery_date"] != "2025-02-07" || rec["delivery_hour"] != "14:00" {
		t.Errorf("unexpected record: %v", rec)
	}
	if got := resp.AsMap()["inserted"]; got != 1.0 {
		t.Errorf("inserted = %v", got)
	}

	again := &structpb.Struct{}
	if err := conn.Invoke(ctx, LabelService_Extract_FullMethodName, sampleRequest(t), again); err != nil {
		t.Fatalf("second Extract: %v", err)
	}
	if rec := firstRecord(t, again); rec["folio"] != 1.0 {
		t.Errorf("rerun changed folio: %v", rec["folio"])
	}
	if m := again.AsMap(); m["inserted"] != 0.0 || m["skipped"] != 1.0 {
		t.Errorf("rerun should skip the stored label: %v", m)
	}

	list := &structpb.Struct{}
	listReq, _ := structpb.NewStruct(map[string]any{"organization": "TAL", "date": "2025-02-07"})
	if err := conn.Invoke(ctx, LabelService_ListRecords_FullMethodName, listReq, list); err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	stored := list.AsMap()["records"].([]any)
	if len(stored) != 1 || stored[0].(map[string]any)["printed_by"] != "Ana" {
		t.Errorf("unexpected stored labels: %v", stored)
	}

	exp := &structpb.Struct{}
	if err := conn.Invoke(ctx, LabelService_ExportLabels_FullMethodName, listReq, exp); err != nil {
		t.Fatalf("ExportLabels: %v", err)
	}
	xlsx, err := base64.StdEncoding.DecodeString(exp.AsMap()["xlsx"].(string))
	if err != nil || !bytes.HasPrefix(xlsx, []byte("PK")) {
		t.Errorf("export is not a workbook: %v", err)
	}

	hc, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil || hc.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("health = %v, %v", hc, err)
	}
}

func TestExtractErrors(t *testing.T) {
	srv := newTestServer(t)
	noDate := labelDump(t, map[constants.Field]string{constants.FieldClientInfo: "Ana (a) CP: 78000"})

	cases := []struct {
		name   string
		fields map[string]*structpb.Value
		want   codes.Code
	}{
		{"no document", map[string]*structpb.Value{"organization": structpb.NewStringValue("TAL")}, codes.InvalidArgument},
		{"no organization", map[string]*structpb.Value{"dump": noDate}, codes.InvalidArgument},
		{"bad reference date", map[string]*structpb.Value{"organization": structpb.NewStringValue("TAL"), "dump": noDate, "reference_date": structpb.NewStringValue("07/02/2025")}, codes.InvalidArgument},
		{"bad dump", map[string]*structpb.Value{"organization": structpb.NewStringValue("TAL"), "dump": structpb.NewStructValue(&structpb.Struct{})}, codes.InvalidArgument},
		{"unknown variant", map[string]*structpb.Value{"organization": structpb.NewStringValue("TAL"), "dump": noDate, "variant": structpb.NewStringValue("landscape")}, codes.InvalidArgument},
		{"unreadable date", map[string]*structpb.Value{"organization": structpb.NewStringValue("TAL"), "dump": noDate}, codes.FailedPrecondition},
		{"missing file", map[string]*structpb.Value{"organization": structpb.NewStringValue("TAL"), "path": structpb.NewStringValue("/nonexistent/a.pdf")}, codes.InvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := srv.Extract(context.Background(), &structpb.Struct{Fields: tc.fields})
			if got := status.Code(err); got != tc.want {
				t.Errorf("code = %v, want %v (%v)", got, tc.want, err)
			}
		})
	}
}

func TestExportWithoutStore(t *testing.T) {
	svc := labels.NewService(regions.DefaultCatalog(), nil, common.ExtractionConfig{RenderScale: 1.5, LineTolerance: 2}, nil)
	srv := NewLabelServer(svc, nil, nil)
	req, _ := structpb.NewStruct(map[string]any{"organization": "TAL"})
	if _, err := srv.ExportLabels(context.Background(), req); status.Code(err) != codes.FailedPrecondition {
		t.Errorf("expected FailedPrecondition, got %v", err)
	}
	bad, _ := structpb.NewStruct(map[string]any{"organization": "TAL", "date": "ayer"})
	if _, err := srv.ExportLabels(context.Background(), bad); status.Code(err) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}

func TestConnectDBWithoutStore(t *testing.T) {
	db, err := ConnectDB(context.Background(), common.DatabaseConfig{}, slog.Default())
	if db != nil || err != nil {
		t.Errorf("expected no store, got %v, %v", db, err)
	}
}
