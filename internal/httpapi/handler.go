package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/xtding233/gacha-sim/internal/banner"
	"github.com/xtding233/gacha-sim/internal/gacha"
	"github.com/xtding233/gacha-sim/internal/session"
)

// Simulation request limits. MaxSimDraws bounds Trials x Budget for
// goal=fixed_budget.
const (
	MaxTrials   = 100000
	MaxBudget   = 10000
	MaxSimDraws = 10000000
)

type Handler struct {
	sessions *session.Manager
	loader   *banner.Loader
}

func NewHandler(sessions *session.Manager, loader *banner.Loader) *Handler {
	return &Handler{sessions: sessions, loader: loader}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)

	e.GET("/v1/banners", h.ListBanners)
	e.GET("/v1/banners/:name/catalog", h.Catalog)
	e.GET("/v1/banners/:name/simulate", h.Simulate)

	e.POST("/v1/sessions/:id", h.CreateSession)
	e.DELETE("/v1/sessions/:id", h.DeleteSession)
	e.GET("/v1/sessions/:id", h.Status)
	e.POST("/v1/sessions/:id/draw", h.Draw)
	e.GET("/v1/sessions/:id/history", h.History)
	e.GET("/v1/sessions/:id/summary", h.Summary)
	e.PUT("/v1/sessions/:id/pity", h.ConfigurePity)
	e.PUT("/v1/sessions/:id/guaranteed", h.SetGuaranteed)
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) ListBanners(c echo.Context) error {
	names, err := h.loader.Names()
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]string{"banners": names})
}

func (h *Handler) Catalog(c echo.Context) error {
	b, err := h.sessions.Template(c.Param("name"))
	if err != nil {
		return mapError(c, err)
	}
	e := b.Engine
	resp := CatalogResponse{
		Banner:  b.Name,
		Title:   b.Title,
		Version: b.Version,
		Pity:    e.Pity(),
	}
	for _, t := range gacha.Tiers() {
		resp.Tiers = append(resp.Tiers, TierResp{
			Tier:   t,
			Rate:   e.TierRate(t),
			Weight: e.TierWeight(t),
			Items:  e.ItemsByTier(t),
		})
	}
	if g, ok := e.GuaranteedItem(); ok {
		resp.Guaranteed = g.Name
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Simulate(c echo.Context) error {
	trials, err := intParam(c, "trials", 1000)
	if err != nil || trials < 1 || trials > MaxTrials {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "trials must be an integer between 1 and 100000"})
	}
	budget, err := intParam(c, "budget", 0)
	if err != nil || budget < 0 || budget > MaxBudget {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "budget must be an integer between 0 and 10000"})
	}
	cushion, err := intParam(c, "cushion", 0)
	if err != nil || cushion < 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cushion must be an integer >= 0"})
	}
	goal := gacha.TrialGoal(c.QueryParam("goal"))
	switch goal {
	case "":
		goal = gacha.GoalFirstTop
	case gacha.GoalFirstTop, gacha.GoalGuaranteedItem:
	case gacha.GoalFixedBudget:
		if budget == 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "budget is required for goal=fixed_budget"})
		}
		if trials*budget > MaxSimDraws {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "trials x budget must not exceed 10000000 draws"})
		}
	default:
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "goal must be one of: first_top, guaranteed_item, fixed_budget"})
	}

	var rng gacha.RandomSource
	if raw := c.QueryParam("seed"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid seed"})
		}
		rng = gacha.NewSeededRNG(seed)
	}

	b, err := h.sessions.Template(c.Param("name"))
	if err != nil {
		return mapError(c, err)
	}
	st, err := gacha.RunMonteCarlo(b.Engine, gacha.SimParams{
		Goal:    goal,
		Trials:  trials,
		Budget:  budget,
		Cushion: cushion,
	}, rng)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, SimulateResponse{Banner: b.Name, Goal: goal, Stats: st})
}

func (h *Handler) CreateSession(c echo.Context) error {
	st, err := h.sessions.Create(c.Param("id"), c.QueryParam("banner"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusCreated, st)
}

func (h *Handler) DeleteSession(c echo.Context) error {
	h.sessions.Delete(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Status(c echo.Context) error {
	var st session.Status
	err := h.sessions.With(c.Param("id"), func(s *session.Session) error {
		st = s.Status()
		return nil
	})
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) Draw(c echo.Context) error {
	n, err := intParam(c, "n", 1)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "n must be an integer"})
	}
	var resp DrawResponse
	err = h.sessions.With(c.Param("id"), func(s *session.Session) error {
		res, cost, err := s.Draw(n)
		if err != nil {
			return err
		}
		resp = DrawResponse{
			Results: toResults(s.Banner.Engine, res),
			Cost:    cost,
			Status:  s.Status(),
		}
		return nil
	})
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) History(c echo.Context) error {
	var resp HistoryResponse
	err := h.sessions.With(c.Param("id"), func(s *session.Session) error {
		resp.Results = toResults(s.Banner.Engine, s.Banner.Engine.History())
		return nil
	})
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Summary(c echo.Context) error {
	var resp SummaryResponse
	err := h.sessions.With(c.Param("id"), func(s *session.Session) error {
		resp.Summary = s.Banner.Engine.HistorySummary()
		return nil
	})
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) ConfigurePity(c echo.Context) error {
	var req PityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	var st session.Status
	err := h.sessions.With(c.Param("id"), func(s *session.Session) error {
		if err := s.Banner.Engine.ConfigurePity(req.Hard, req.SoftStart, req.Multiplier); err != nil {
			return err
		}
		st = s.Status()
		return nil
	})
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) SetGuaranteed(c echo.Context) error {
	var req GuaranteedRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.Name == "" && req.Index == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name or index is required"})
	}
	var st session.Status
	err := h.sessions.With(c.Param("id"), func(s *session.Session) error {
		e := s.Banner.Engine
		var err error
		if req.Name != "" {
			err = e.SetGuaranteedItemByName(req.Name)
		} else {
			err = e.SetGuaranteedItem(*req.Index)
		}
		if err != nil {
			return err
		}
		st = s.Status()
		return nil
	})
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func intParam(c echo.Context, key string, fallback int) (int, error) {
	raw := c.QueryParam(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func mapError(c echo.Context, err error) error {
	requestID, _ := c.Get("request_id").(string)

	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, banner.ErrBannerNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, session.ErrInvalidCount),
		errors.Is(err, gacha.ErrInvalidPityConfig),
		errors.Is(err, gacha.ErrItemNotFound),
		errors.Is(err, gacha.ErrNotTopTier):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, gacha.ErrNoTopTierItem):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		slog.Error("internal error", "request_id", requestID, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
