package rpc

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/gacha-sim/internal/banner"
	"github.com/xtding233/gacha-sim/internal/gacha"
	"github.com/xtding233/gacha-sim/internal/session"
)

// Server implements GachaServer on top of a session manager.
type Server struct {
	sessions *session.Manager
}

func NewServer(sessions *session.Manager) *Server {
	return &Server{sessions: sessions}
}

var _ GachaServer = (*Server)(nil)

func (s *Server) CreateSession(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	st, err := s.sessions.Create(str(in, "session"), str(in, "banner"))
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(statusFields(st))
}

func (s *Server) Draw(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	n := 1
	if _, ok := in.GetFields()["n"]; ok {
		var err error
		if n, err = intField(in, "n"); err != nil {
			return nil, err
		}
	}
	var out map[string]any
	err := s.sessions.With(str(in, "session"), func(sess *session.Session) error {
		res, cost, err := sess.Draw(n)
		if err != nil {
			return err
		}
		out = map[string]any{
			"results": resultList(sess.Banner.Engine, res),
			"cost":    cost,
			"status":  statusFields(sess.Status()),
		}
		return nil
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(out)
}

func (s *Server) Status(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var st session.Status
	err := s.sessions.With(str(in, "session"), func(sess *session.Session) error {
		st = sess.Status()
		return nil
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(statusFields(st))
}

func (s *Server) ConfigurePity(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	hard, err := intField(in, "hard")
	if err != nil {
		return nil, err
	}
	soft, err := intField(in, "soft_start")
	if err != nil {
		return nil, err
	}
	mult := in.GetFields()["multiplier"].GetNumberValue()

	var st session.Status
	err = s.sessions.With(str(in, "session"), func(sess *session.Session) error {
		if err := sess.Banner.Engine.ConfigurePity(hard, soft, mult); err != nil {
			return err
		}
		st = sess.Status()
		return nil
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(statusFields(st))
}

func (s *Server) SetGuaranteed(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	name := str(in, "name")
	_, hasIndex := in.GetFields()["index"]
	if name == "" && !hasIndex {
		return nil, status.Error(codes.InvalidArgument, "name or index is required")
	}
	index, err := intField(in, "index")
	if err != nil {
		return nil, err
	}
	var st session.Status
	err = s.sessions.With(str(in, "session"), func(sess *session.Session) error {
		e := sess.Banner.Engine
		var err error
		if name != "" {
			err = e.SetGuaranteedItemByName(name)
		} else {
			err = e.SetGuaranteedItem(index)
		}
		if err != nil {
			return err
		}
		st = sess.Status()
		return nil
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(statusFields(st))
}

func (s *Server) Summary(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	out := map[string]any{}
	err := s.sessions.With(str(in, "session"), func(sess *session.Session) error {
		for tier, items := range sess.Banner.Engine.HistorySummary() {
			counts := make(map[string]any, len(items))
			for name, n := range items {
				counts[name] = n
			}
			out[string(tier)] = counts
		}
		return nil
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(out)
}

// LoggingInterceptor logs each unary call with its status code.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("rpc",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, banner.ErrBannerNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, session.ErrInvalidCount),
		errors.Is(err, gacha.ErrInvalidPityConfig),
		errors.Is(err, gacha.ErrItemNotFound),
		errors.Is(err, gacha.ErrNotTopTier):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, gacha.ErrNoTopTierItem):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		slog.Error("rpc internal error", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func str(in *structpb.Struct, key string) string {
	return in.GetFields()[key].GetStringValue()
}

// intField reads an integral number field; a missing field reads as 0.
// Fractions, non-numbers and values outside int32 are InvalidArgument.
func intField(in *structpb.Struct, key string) (int, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		return 0, nil
	}
	nv, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", key)
	}
	f := nv.NumberValue
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer in int32 range, got %v", key, f)
	}
	return int(f), nil
}

func statusFields(st session.Status) map[string]any {
	return map[string]any{
		"id":                    st.ID,
		"banner":                st.Banner,
		"title":                 st.Title,
		"draw_count":            st.DrawCount,
		"pulls_until_hard_pity": st.PullsUntilHard,
		"pulls_until_soft_pity": st.PullsUntilSoft,
		"in_soft_pity":          st.InSoftPity,
		"current_top_rate":      st.TopRate,
		"hard_threshold":        st.Pity.HardThreshold,
		"soft_start":            st.Pity.SoftStart,
		"soft_multiplier":       st.Pity.SoftMultiplier,
		"guaranteed":            st.Guaranteed,
		"draws":                 st.Draws,
		"spent":                 st.Spent,
		"currency":              st.Currency,
	}
}

// resultList builds a []any so structpb accepts it as a list value.
func resultList(e *gacha.Engine, rs []gacha.DrawResult) []any {
	out := make([]any, len(rs))
	for i, r := range rs {
		m := map[string]any{
			"item":        r.Item,
			"tier":        string(r.Tier),
			"stars":       r.Tier.Stars(),
			"guaranteed":  r.Guaranteed,
			"sequence":    r.Sequence,
			"placeholder": r.Placeholder,
		}
		if it, ok := e.Lookup(r.Item); ok && !r.Placeholder {
			m["title"] = it.Title
			m["flavor"] = it.Flavor
		}
		out[i] = m
	}
	return out
}
