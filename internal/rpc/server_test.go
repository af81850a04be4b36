package rpc_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/xtding233/gacha-sim/internal/banner"
	"github.com/xtding233/gacha-sim/internal/rpc"
	"github.com/xtding233/gacha-sim/internal/session"
)

const testBanner = `
rates: {SSR: 0}
pity: {hard: 4, soft_start: 2, multiplier: 3}
items:
  - {name: Aria, tier: SSR, weight: 1, title: Storm Herald}
  - {name: Bram, tier: SSR, weight: 1}
  - {name: Cole, tier: SR, weight: 1}
  - {name: Stick, tier: Common, weight: 1}
`

func newClient(t *testing.T) *rpc.Client {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "banners"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "banners", "default.yaml"), []byte(testBanner), 0o644); err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mgr := session.NewManager(banner.NewLoader(dir), session.SeededRNGs(5), logger)

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(grpc.UnaryInterceptor(rpc.LoggingInterceptor(logger)))
	rpc.Register(s, rpc.NewServer(mgr))
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return rpc.NewClient(conn)
}

func TestDrawOverGRPC(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	st, err := c.Call(ctx, "CreateSession", map[string]any{"session": "p1"})
	if err != nil {
		t.Fatal(err)
	}
	if got := st.GetFields()["pulls_until_hard_pity"].GetNumberValue(); got != 4 {
		t.Fatalf("pulls_until_hard_pity = %v", got)
	}

	out, err := c.Call(ctx, "Draw", map[string]any{"session": "p1", "n": 4})
	if err != nil {
		t.Fatal(err)
	}
	results := out.GetFields()["results"].GetListValue().GetValues()
	if len(results) != 4 {
		t.Fatalf("got %d results", len(results))
	}
	last := results[3].GetStructValue().GetFields()
	if !last["guaranteed"].GetBoolValue() || last["item"].GetStringValue() != "Aria" || last["title"].GetStringValue() != "Storm Herald" {
		t.Fatalf("4th draw = %v", last)
	}
	if got := out.GetFields()["status"].GetStructValue().GetFields()["draw_count"].GetNumberValue(); got != 0 {
		t.Fatalf("draw_count after pity = %v", got)
	}

	sum, err := c.Call(ctx, "Summary", map[string]any{"session": "p1"})
	if err != nil {
		t.Fatal(err)
	}
	if got := sum.GetFields()["SSR"].GetStructValue().GetFields()["Aria"].GetNumberValue(); got != 1 {
		t.Fatalf("summary SSR/Aria = %v", got)
	}
}

func TestConfigureOverGRPC(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()
	if _, err := c.Call(ctx, "CreateSession", map[string]any{"session": "p1"}); err != nil {
		t.Fatal(err)
	}

	_, err := c.Call(ctx, "ConfigurePity", map[string]any{"session": "p1", "hard": 5, "soft_start": 5, "multiplier": 2})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("invalid pity: code %v", status.Code(err))
	}
	st, err := c.Call(ctx, "Status", map[string]any{"session": "p1"})
	if err != nil {
		t.Fatal(err)
	}
	if got := st.GetFields()["hard_threshold"].GetNumberValue(); got != 4 {
		t.Fatalf("rejected pity changed hard threshold to %v", got)
	}

	st, err = c.Call(ctx, "ConfigurePity", map[string]any{"session": "p1", "hard": 50, "soft_start": 40, "multiplier": 2.5})
	if err != nil {
		t.Fatal(err)
	}
	if got := st.GetFields()["soft_multiplier"].GetNumberValue(); got != 2.5 {
		t.Fatalf("soft_multiplier = %v", got)
	}

	_, err = c.Call(ctx, "SetGuaranteed", map[string]any{"session": "p1", "name": "Cole"})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("non-top guaranteed: code %v", status.Code(err))
	}
	st, err = c.Call(ctx, "SetGuaranteed", map[string]any{"session": "p1", "name": "Bram"})
	if err != nil {
		t.Fatal(err)
	}
	if got := st.GetFields()["guaranteed"].GetStringValue(); got != "Bram" {
		t.Fatalf("guaranteed = %q", got)
	}
	st, err = c.Call(ctx, "SetGuaranteed", map[string]any{"session": "p1", "index": 0})
	if err != nil {
		t.Fatal(err)
	}
	if got := st.GetFields()["guaranteed"].GetStringValue(); got != "Aria" {
		t.Fatalf("guaranteed = %q", got)
	}
}

func TestErrorsOverGRPC(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	cases := []struct {
		method string
		fields map[string]any
		want   codes.Code
	}{
		{"Status", map[string]any{"session": "ghost"}, codes.NotFound},
		{"CreateSession", map[string]any{"session": "p1", "banner": "nope"}, codes.NotFound},
		{"SetGuaranteed", map[string]any{"session": "p1"}, codes.InvalidArgument},
	}
	for _, tc := range cases {
		if _, err := c.Call(ctx, tc.method, tc.fields); status.Code(err) != tc.want {
			t.Errorf("%s: code %v, want %v", tc.method, status.Code(err), tc.want)
		}
	}

	if _, err := c.Call(ctx, "CreateSession", map[string]any{"session": "p1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Call(ctx, "Draw", map[string]any{"session": "p1", "n": 0}); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("n=0: code %v", status.Code(err))
	}
}

func TestNonIntegralNumbersRejected(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()
	if _, err := c.Call(ctx, "CreateSession", map[string]any{"session": "p1"}); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		method string
		fields map[string]any
	}{
		{"ConfigurePity", map[string]any{"session": "p1", "hard": 5.9, "soft_start": 2, "multiplier": 2}},
		{"ConfigurePity", map[string]any{"session": "p1", "hard": 1e12, "soft_start": 2, "multiplier": 2}},
		{"ConfigurePity", map[string]any{"session": "p1", "hard": "10", "soft_start": 2, "multiplier": 2}},
		{"Draw", map[string]any{"session": "p1", "n": 1.5}},
		{"SetGuaranteed", map[string]any{"session": "p1", "index": 0.5}},
	}
	for _, tc := range cases {
		if _, err := c.Call(ctx, tc.method, tc.fields); status.Code(err) != codes.InvalidArgument {
			t.Errorf("%s %v: code %v, want InvalidArgument", tc.method, tc.fields, status.Code(err))
		}
	}

	st, err := c.Call(ctx, "Status", map[string]any{"session": "p1"})
	if err != nil {
		t.Fatal(err)
	}
	if got := st.GetFields()["hard_threshold"].GetNumberValue(); got != 4 {
		t.Fatalf("rejected call changed hard threshold to %v", got)
	}
	if got := st.GetFields()["draws"].GetNumberValue(); got != 0 {
		t.Fatalf("rejected draw ran %v draws", got)
	}
}
