package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	models "FundFlow/internal/domain/models"
	"FundFlow/internal/service/cache"
	"FundFlow/internal/service/ratelimit"
	"FundFlow/internal/usecase"
	xhttp "FundFlow/pkg/http"
	xlogger "FundFlow/pkg/logger"
	"FundFlow/pkg/util"

	"github.com/labstack/echo/v4"
)

// Handler exposes the signal and fund-flow endpoints over Echo.
type Handler struct {
	logger    *xlogger.Logger
	signals   *usecase.SignalsUseCase
	flows     *usecase.FundFlowUseCase
	respCache cache.BytesCache
	cacheTTL  time.Duration
	limiter   *ratelimit.Limiter
	rps       float64
	burst     int
}

type Options struct {
	ResponseCache cache.BytesCache
	CacheTTL      time.Duration
	RateRPS       float64
	RateBurst     int
}

func NewHandler(logger *xlogger.Logger, signals *usecase.SignalsUseCase, flows *usecase.FundFlowUseCase, opts Options) *Handler {
	h := &Handler{
		logger:    logger,
		signals:   signals,
		flows:     flows,
		respCache: opts.ResponseCache,
		cacheTTL:  opts.CacheTTL,
		rps:       opts.RateRPS,
		burst:     opts.RateBurst,
	}
	if h.cacheTTL <= 0 {
		h.cacheTTL = 30 * time.Second
	}
	if h.rps > 0 {
		h.limiter = ratelimit.New()
		if h.burst <= 0 {
			h.burst = int(h.rps)
		}
	}
	return h
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api", h.rateLimit)
	g.GET("/signal", h.Signal)
	g.GET("/signal/scan", h.Scan)
	g.GET("/fundflow/record", h.Record)
	g.GET("/fundflow/series", h.Series)
	g.GET("/fundflow/branches", h.Branches)
	g.POST("/cache/clear", h.ClearCache)
}

func (h *Handler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.limiter != nil && !h.limiter.Allow(c.RealIP(), float64(h.burst), h.rps) {
			return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limit exceeded")
		}
		return next(c)
	}
}

// cached serves the endpoint payload through the response cache. Payloads are
// stored as marshaled JSON; a hit skips the usecase entirely.
func (h *Handler) cached(c echo.Context, key string, build func() (interface{}, error)) error {
	if h.respCache != nil {
		if b, ok, err := h.respCache.GetBytes(key); err == nil && ok {
			return xhttp.SuccessResponse(c, json.RawMessage(b))
		}
	}

	data, err := build()
	if err != nil {
		h.logger.Error("handler error", xlogger.String("key", key), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	if h.respCache != nil {
		if b, err := json.Marshal(data); err == nil {
			if err := h.respCache.SetBytes(key, b, h.cacheTTL); err != nil {
				h.logger.Warn("response cache write failed", xlogger.Error(err))
			}
		}
	}
	return xhttp.SuccessResponse(c, data)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Signal(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := util.PadSymbol(req.Symbol)

	key := "signal/" + symbol + "/" + itoa(req.Lookback)
	return h.cached(c, key, func() (interface{}, error) {
		res := h.signals.Latest(c.Request().Context(), symbol, req.Lookback)
		return res, nil
	})
}

func (h *Handler) Scan(c echo.Context) error {
	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := util.PadSymbol(req.Symbol)

	key := "scan/" + symbol + "/" + itoa(req.Lookback) + "/" + itoa(req.Steps)
	return h.cached(c, key, func() (interface{}, error) {
		res := h.signals.Scan(c.Request().Context(), symbol, req.Lookback, req.Steps)
		return res, nil
	})
}

func (h *Handler) Record(c echo.Context) error {
	req := &models.RecordRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := util.PadSymbol(req.Symbol)
	date, ok := xhttp.NormalizeDateParam(req.Date)
	if !ok {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestErrorf("invalid date %q", req.Date))
	}

	key := "record/" + symbol + "/" + date
	return h.cached(c, key, func() (interface{}, error) {
		res := h.flows.Record(c.Request().Context(), symbol, date)
		return res, nil
	})
}

func (h *Handler) Series(c echo.Context) error {
	req := &models.SeriesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := util.PadSymbol(req.Symbol)
	start, end, ok := util.OrderRange(req.Start, req.End)
	if !ok {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestErrorf("invalid date range %q..%q", req.Start, req.End))
	}

	key := "series/" + symbol + "/" + start + "/" + end
	return h.cached(c, key, func() (interface{}, error) {
		res := h.flows.Series(c.Request().Context(), symbol, start, end)
		return res, nil
	})
}

func (h *Handler) Branches(c echo.Context) error {
	req := &models.BranchesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := util.PadSymbol(req.Symbol)
	start, end, ok := util.OrderRange(req.Start, req.End)
	if !ok {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestErrorf("invalid date range %q..%q", req.Start, req.End))
	}

	key := "branches/" + symbol + "/" + start + "/" + end
	return h.cached(c, key, func() (interface{}, error) {
		res := h.flows.Branches(c.Request().Context(), symbol, start, end)
		return res, nil
	})
}

func (h *Handler) ClearCache(c echo.Context) error {
	h.flows.ClearCache()
	h.logger.Info("disclosure caches cleared")
	return xhttp.SuccessResponse(c, "cleared")
}

func itoa(n int) string { return strconv.Itoa(n) }
