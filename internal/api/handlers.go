// Package api contains the HTTP handlers for the fit-action service.
package api

import (
	"errors"
	"net/http"
	"time"

	"caila-fit-action/internal/model"
	"caila-fit-action/internal/services"

	"github.com/labstack/echo/v4"
)

// Server holds the dependencies for the API server.
type Server struct {
	svc     *services.FitService
	service string
	version string
}

// NewServer creates a new Server.
func NewServer(svc *services.FitService, serviceName, version string) *Server {
	return &Server{svc: svc, service: serviceName, version: version}
}

// Register mounts all routes on the given echo instance.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.HandleHealth)

	g := e.Group("/api/v1")
	g.POST("/fit", s.HandleFit)
	g.POST("/predict", s.HandlePredict)
	g.DELETE("/state", s.HandlePrune)
	g.GET("/info", s.HandleInfo)
}

// Dataset is the fit request body, matching the platform's dataset upload
// format.
type Dataset struct {
	Texts []string `json:"texts"`
}

// PredictRequest is the predict request body. The field carries integer
// indices into the fitted dataset; the "texts" name is inherited from the
// platform's request format.
type PredictRequest struct {
	Texts []int `json:"texts"`
}

// PredictResponse is the predict response body.
type PredictResponse struct {
	Texts []string `json:"texts"`
}

// HealthStatus represents the health check response.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// HandleFit ingests a dataset and replaces the model state
// (POST /api/v1/fit)
func (s *Server) HandleFit(c echo.Context) error {
	ctx := c.Request().Context()

	var dataset Dataset
	if err := c.Bind(&dataset); err != nil {
		return problem(c, http.StatusBadRequest, "Invalid request body", err.Error())
	}
	if len(dataset.Texts) == 0 {
		return problem(c, http.StatusBadRequest, "Invalid dataset", `the dataset must contain a non-empty "texts" array`)
	}

	if _, err := s.svc.Fit(ctx, dataset.Texts); err != nil {
		return problem(c, http.StatusInternalServerError, "Fit failed", err.Error())
	}

	return c.JSON(http.StatusOK, s.svc.Info())
}

// HandlePredict returns the stored texts at the requested indices
// (POST /api/v1/predict)
func (s *Server) HandlePredict(c echo.Context) error {
	ctx := c.Request().Context()

	var req PredictRequest
	if err := c.Bind(&req); err != nil {
		return problem(c, http.StatusBadRequest, "Invalid request body", err.Error())
	}
	if len(req.Texts) == 0 {
		return problem(c, http.StatusBadRequest, "Invalid request", `the request must contain a non-empty "texts" array of indices`)
	}

	texts, err := s.svc.Predict(ctx, req.Texts)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFitted):
			return problem(c, http.StatusConflict, "Model is not fitted", "call fit before predict")
		case errors.Is(err, model.ErrNoSuchIndex):
			return problem(c, http.StatusBadRequest, "Index out of range", err.Error())
		default:
			return problem(c, http.StatusInternalServerError, "Predict failed", err.Error())
		}
	}

	return c.JSON(http.StatusOK, PredictResponse{Texts: texts})
}

// HandlePrune removes the persisted model state
// (DELETE /api/v1/state)
func (s *Server) HandlePrune(c echo.Context) error {
	if err := s.svc.Prune(c.Request().Context()); err != nil {
		return problem(c, http.StatusInternalServerError, "Prune failed", err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleInfo returns the model lifecycle state
// (GET /api/v1/info)
func (s *Server) HandleInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, s.svc.Info())
}

// HandleHealth returns basic health status (always returns 200 OK)
// (GET /healthz)
func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Service:   s.service,
		Version:   s.version,
	})
}

// ProblemDetails represents an RFC 7807 Problem Details response.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

// problem writes an RFC 7807 Problem Details JSON error response.
func problem(c echo.Context, status int, title, detail string) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/problem+json")
	return c.JSON(status, ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
	})
}
