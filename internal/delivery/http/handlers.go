package http

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/bikeshare/dashboard/internal/domain"
	"github.com/bikeshare/dashboard/internal/service"
)

const (
	serviceName    = "bikeshare-dashboard"
	serviceVersion = "1.0.0"
)

// DashboardQuery is the date filter carried in the query string
type DashboardQuery struct {
	Start string `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `query:"end" validate:"omitempty,datetime=2006-01-02"`
}

// Handler contains all HTTP handlers
type Handler struct {
	dashboardSvc *service.DashboardService
	assetSvc     *service.AssetService
	health       domain.HealthChecker
	validate     *validator.Validate
	log          logrus.FieldLogger
}

// NewHandler creates a new handler. health may be nil when no database is configured.
func NewHandler(dashboardSvc *service.DashboardService, assetSvc *service.AssetService, health domain.HealthChecker, log logrus.FieldLogger) *Handler {
	return &Handler{
		dashboardSvc: dashboardSvc,
		assetSvc:     assetSvc,
		health:       health,
		validate:     validator.New(),
		log:          log.WithField("component", "http"),
	}
}

// HealthCheck returns service health status including the dataset
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	ctx := c.Context()

	status := "ok"
	code := fiber.StatusOK

	dataset := fiber.Map{"status": "ok"}
	bounds, err := h.dashboardSvc.Bounds(ctx)
	if err != nil {
		status, code = "degraded", fiber.StatusServiceUnavailable
		dataset = fiber.Map{"status": "error", "error": err.Error()}
	} else {
		dataset["rows"] = bounds.Rows
		dataset["source"] = bounds.Source
		dataset["min_date"] = bounds.MinDate
		dataset["max_date"] = bounds.MaxDate
	}

	body := fiber.Map{
		"status":  status,
		"service": serviceName,
		"version": serviceVersion,
		"dataset": dataset,
	}
	if h.health != nil {
		if err := h.health.Health(ctx); err != nil {
			status, code = "degraded", fiber.StatusServiceUnavailable
			body["status"] = status
			body["database"] = fiber.Map{"status": "error", "error": err.Error()}
		} else {
			body["database"] = fiber.Map{"status": "ok"}
		}
	}

	return c.Status(code).JSON(body)
}

// GetDashboard renders the dashboard page with both figures inlined
func (h *Handler) GetDashboard(c *fiber.Ctx) error {
	ctx := c.Context()

	bounds, r, err := h.resolveRange(c)
	if err != nil {
		return err
	}

	figs, err := h.dashboardSvc.Render(ctx, r)
	if err != nil {
		return h.pipelineError(msgRenderFailed, err)
	}

	data := pageData{
		Title:      pageTitle,
		LogoURL:    "/assets/logo",
		Bounds:     bounds,
		Start:      figs.Range.Start.Format(domain.DateLayout),
		End:        figs.Range.End.Format(domain.DateLayout),
		Rows:       figs.Rows,
		Empty:      figs.Empty,
		EmptyText:  domain.ErrEmptySelection.Error(),
		TrendsSrc:  inlinePNG(figs.TrendsPNG),
		WeatherSrc: inlinePNG(figs.WeatherPNG),
	}
	return renderHTML(c, fiber.StatusOK, "index.html", data)
}

// GetTrendsChart returns the monthly and yearly trends figure as PNG
func (h *Handler) GetTrendsChart(c *fiber.Ctx) error {
	_, r, err := h.resolveRange(c)
	if err != nil {
		return err
	}

	png, err := h.dashboardSvc.RenderTrends(c.Context(), r)
	if err != nil {
		return h.pipelineError(msgRenderFailed, err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

// GetWeatherChart returns the weather correlation figure as PNG
func (h *Handler) GetWeatherChart(c *fiber.Ctx) error {
	_, r, err := h.resolveRange(c)
	if err != nil {
		return err
	}

	png, err := h.dashboardSvc.RenderWeather(c.Context(), r)
	if err != nil {
		return h.pipelineError(msgRenderFailed, err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

// GetBounds returns the dataset's date span
func (h *Handler) GetBounds(c *fiber.Ctx) error {
	bounds, err := h.dashboardSvc.Bounds(c.Context())
	if err != nil {
		return h.pipelineError(msgDatasetUnavailable, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    bounds,
	})
}

// GetTrends returns the monthly pivot for the selected range
func (h *Handler) GetTrends(c *fiber.Ctx) error {
	figs, err := h.aggregate(c)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"range":   rangeJSON(figs.Range),
		"rows":    figs.Rows,
		"empty":   figs.Empty,
		"data": fiber.Map{
			"pivot":        figs.Pivot,
			"month_labels": nonNil(figs.MonthLabels),
		},
	})
}

// GetTotals returns the yearly totals for the selected range
func (h *Handler) GetTotals(c *fiber.Ctx) error {
	figs, err := h.aggregate(c)
	if err != nil {
		return err
	}

	totals := figs.Totals
	if totals == nil {
		totals = []domain.YearlyTotal{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"range":   rangeJSON(figs.Range),
		"rows":    figs.Rows,
		"empty":   figs.Empty,
		"data":    totals,
		"count":   len(totals),
	})
}

// GetCorrelation returns the correlation matrix and regression fits for the selected range
func (h *Handler) GetCorrelation(c *fiber.Ctx) error {
	figs, err := h.aggregate(c)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"range":   rangeJSON(figs.Range),
		"rows":    figs.Rows,
		"empty":   figs.Empty,
		"data":    figs.Weather,
	})
}

// GetLogo proxies the sidebar logo
func (h *Handler) GetLogo(c *fiber.Ctx) error {
	asset, err := h.assetSvc.Logo(c.Context())
	if err != nil {
		var assetErr *domain.RemoteAssetError
		if errors.As(err, &assetErr) {
			return fiber.NewError(fiber.StatusBadGateway, "Failed to fetch logo")
		}
		return err
	}

	c.Set(fiber.HeaderContentType, asset.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	return c.Send(asset.Body)
}

// resolveRange parses and validates the query, then resolves it against the dataset bounds
func (h *Handler) resolveRange(c *fiber.Ctx) (domain.DatasetBounds, domain.DateRange, error) {
	var q DashboardQuery
	if err := c.QueryParser(&q); err != nil {
		return domain.DatasetBounds{}, domain.DateRange{}, fiber.NewError(fiber.StatusBadRequest, "Invalid query string")
	}
	if err := h.validate.Struct(q); err != nil {
		return domain.DatasetBounds{}, domain.DateRange{}, fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
	}

	// Bounds fails only when the dataset cannot be loaded; once it succeeds
	// every remaining error is about the input.
	bounds, err := h.dashboardSvc.Bounds(c.Context())
	if err != nil {
		return domain.DatasetBounds{}, domain.DateRange{}, h.pipelineError(msgDatasetUnavailable, err)
	}

	r, err := h.dashboardSvc.ResolveRange(c.Context(), q.Start, q.End)
	if err != nil {
		return domain.DatasetBounds{}, domain.DateRange{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return bounds, r, nil
}

func (h *Handler) aggregate(c *fiber.Ctx) (*domain.Figures, error) {
	_, r, err := h.resolveRange(c)
	if err != nil {
		return nil, err
	}

	figs, err := h.dashboardSvc.Aggregate(c.Context(), r)
	if err != nil {
		return nil, h.pipelineError(msgDatasetUnavailable, err)
	}
	return figs, nil
}

const (
	msgDatasetUnavailable = "Dataset could not be loaded"
	msgRenderFailed       = "Figures could not be rendered"
)

// pipelineError logs a dataset or render failure and maps it to a 500 carrying its cause
func (h *Handler) pipelineError(msg string, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}

	entry := h.log.WithError(err)
	var formatErr *domain.DataFormatError
	if errors.As(err, &formatErr) {
		entry = entry.WithFields(logrus.Fields{
			"source": formatErr.Source,
			"column": formatErr.Column,
			"row":    formatErr.Row,
		})
	}
	entry.Error(msg)

	return fiber.NewError(fiber.StatusInternalServerError, msg+": "+err.Error())
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid query string"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s must be a date in YYYY-MM-DD format", strings.ToLower(fe.Field())))
	}
	return strings.Join(msgs, "; ")
}

func rangeJSON(r domain.DateRange) fiber.Map {
	return fiber.Map{
		"start": r.Start.Format(domain.DateLayout),
		"end":   r.End.Format(domain.DateLayout),
	}
}

func inlinePNG(data []byte) template.URL {
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(data))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func renderHTML(c *fiber.Ctx, code int, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("http: failed to render %s: %w", name, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(code).Send(buf.Bytes())
}
