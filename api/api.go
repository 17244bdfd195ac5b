// Package api exposes forecast runs over HTTP.
package api

import (
	"context"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sartorproj/salescast/forecast"
	"github.com/sartorproj/salescast/store"
)

// Refresher reruns the forecast pipeline and returns the new run id.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// Handler serves forecast runs from the repository.
type Handler struct {
	repo      store.Repository
	refresher Refresher
	logger    *logrus.Logger
}

// NewHandler creates a Handler.
func NewHandler(repo store.Repository, refresher Refresher, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{repo: repo, refresher: refresher, logger: logger}
}

// SetupRoutes registers all routes on the router.
func (h *Handler) SetupRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/run", h.GetLatestRun)
		v1.GET("/products", h.ListProducts)
		v1.GET("/forecasts/:unique_id", h.GetForecasts)
		v1.GET("/scores", h.GetScores)
		v1.POST("/refresh", h.Refresh)
	}
}

// Health reports service liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetLatestRun returns metadata of the most recent forecast run.
func (h *Handler) GetLatestRun(c *gin.Context) {
	run, ok := h.latestRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, run)
}

// ListProducts returns the series identifiers of the latest run.
func (h *Handler) ListProducts(c *gin.Context) {
	run, ok := h.latestRun(c)
	if !ok {
		return
	}

	ids, err := h.repo.SeriesIDs(run.ID)
	if err != nil {
		h.serverError(c, err, "Failed to list products")
		return
	}

	c.JSON(http.StatusOK, gin.H{"run_id": run.ID, "products": ids})
}

// GetForecasts returns the latest forecasts for one series.
func (h *Handler) GetForecasts(c *gin.Context) {
	run, ok := h.latestRun(c)
	if !ok {
		return
	}

	uniqueID := c.Param("unique_id")
	rows, err := h.repo.ForecastsBySeries(run.ID, uniqueID)
	if err != nil {
		h.serverError(c, err, "Failed to load forecasts")
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown product: " + uniqueID})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":    run.ID,
		"unique_id": uniqueID,
		"forecasts": rows,
	})
}

// GetScores returns the holdout scores and model leaderboard of the
// latest run.
func (h *Handler) GetScores(c *gin.Context) {
	run, ok := h.latestRun(c)
	if !ok {
		return
	}

	scores, err := h.repo.Scores(run.ID)
	if err != nil {
		h.serverError(c, err, "Failed to load scores")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":      run.ID,
		"leaderboard": forecast.Compare(scores),
		"scores":      toScoreViews(scores),
	})
}

// scoreView mirrors forecast.Score with undefined percentage errors
// rendered as null, since JSON cannot carry NaN.
type scoreView struct {
	UniqueID string   `json:"unique_id"`
	Model    string   `json:"model"`
	MAE      float64  `json:"mae"`
	RMSE     float64  `json:"rmse"`
	MAPE     *float64 `json:"mape"`
	SMAPE    *float64 `json:"smape"`
}

func toScoreViews(scores []forecast.Score) []scoreView {
	views := make([]scoreView, len(scores))
	for i, s := range scores {
		views[i] = scoreView{
			UniqueID: s.UniqueID,
			Model:    s.Model,
			MAE:      s.MAE,
			RMSE:     s.RMSE,
			MAPE:     finiteOrNil(s.MAPE),
			SMAPE:    finiteOrNil(s.SMAPE),
		}
	}
	return views
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Refresh reruns the pipeline and persists a new run.
func (h *Handler) Refresh(c *gin.Context) {
	if h.refresher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "refresh is not configured"})
		return
	}

	runID, err := h.refresher.Refresh(c.Request.Context())
	if err != nil {
		h.serverError(c, err, "Refresh failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"run_id": runID})
}

// latestRun loads the newest run or writes the appropriate error
// response.
func (h *Handler) latestRun(c *gin.Context) (*store.Run, bool) {
	run, err := h.repo.LatestRun()
	if err != nil {
		h.serverError(c, err, "Failed to load latest run")
		return nil, false
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no forecast run available"})
		return nil, false
	}
	return run, true
}

func (h *Handler) serverError(c *gin.Context, err error, msg string) {
	h.logger.WithError(err).Error(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
