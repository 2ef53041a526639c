package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"CoinLake/internal/domain/models"
	drepo "CoinLake/internal/domain/repository"
	"CoinLake/internal/usecase"
	xhttp "CoinLake/pkg/http"
	xlogger "CoinLake/pkg/logger"
	"CoinLake/pkg/util"

	"github.com/labstack/echo/v4"
)

// IngestEchoHandler exposes the backfill retriever, the latest-tick cache,
// and supervisor status over HTTP.
type IngestEchoHandler struct {
	logger    *xlogger.Logger
	retriever *usecase.BackfillRetriever
	sup       *usecase.Supervisor
	cache     drepo.LatestCache
	store     drepo.ObjectStore
}

func NewIngestEchoHandler(
	logger *xlogger.Logger,
	retriever *usecase.BackfillRetriever,
	sup *usecase.Supervisor,
	cache drepo.LatestCache,
	store drepo.ObjectStore,
) *IngestEchoHandler {
	return &IngestEchoHandler{logger: logger, retriever: retriever, sup: sup, cache: cache, store: store}
}

func (h *IngestEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/backfill", h.Backfill)
	g.GET("/latest", h.Latest)
	g.GET("/status", h.Status)
	e.GET("/healthz", h.Health)
}

// Backfill runs a synchronous historical retrieval and optionally archives
// the result as one bulk object.
func (h *IngestEchoHandler) Backfill(c echo.Context) error {
	req := &models.BackfillRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	start, ok := util.ParseTime(req.Start)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("start must be RFC3339 or unix seconds"))
	}
	end := util.ParseTimeDefault(req.End, time.Now().UTC())

	candles, err := h.retriever.Retrieve(c.Request().Context(), req.Product, start, end, req.Granularity)
	if err != nil {
		return h.backfillError(c, err)
	}

	resp := &models.BackfillResponse{
		Product:     req.Product,
		Granularity: req.Granularity,
		Count:       len(candles),
		Candles:     candles,
	}
	if req.StoreResult() && len(candles) > 0 {
		key, err := h.retriever.Archive(c.Request().Context(), req.Product, candles)
		if err != nil {
			h.logger.Error("archive failed", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.InternalError("archive failed").WithError(err))
		}
		resp.Stored = true
		resp.Key = key
	}
	return xhttp.SuccessResponse(c, resp)
}

func (h *IngestEchoHandler) backfillError(c echo.Context, err error) error {
	var ue *drepo.UpstreamError
	switch {
	case errors.As(err, &ue):
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError(ue.Error()).
			WithParam("status", ue.Status).
			WithParam("window", ue.Window.String()))
	case errors.Is(err, drepo.ErrInvalidRange), errors.Is(err, drepo.ErrInvalidGranularity):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	default:
		h.logger.Error("backfill error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("backfill failed").WithError(err))
	}
}

// Latest returns the most recent cached tick for a product.
func (h *IngestEchoHandler) Latest(c echo.Context) error {
	req := &models.LatestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.cache == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("latest-tick cache disabled"))
	}

	payload, found, err := h.cache.GetLatest(c.Request().Context(), req.Product)
	if err != nil {
		h.logger.Error("cache read error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("cache read failed").WithError(err))
	}
	if !found {
		return xhttp.NotFoundResponse(c, "no tick seen for "+req.Product)
	}
	return xhttp.SuccessResponse(c, json.RawMessage(payload))
}

// Status reports per-product pipeline state.
func (h *IngestEchoHandler) Status(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.sup.Status())
}

// Health pings the object store.
func (h *IngestEchoHandler) Health(c echo.Context) error {
	if err := h.store.Health(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
