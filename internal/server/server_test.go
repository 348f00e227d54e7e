package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spam-detector/internal/classifier"
	"spam-detector/internal/config"
	"spam-detector/internal/middleware"
	"spam-detector/internal/models"
	"spam-detector/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	art := classifier.LinearArtifact{
		ModelType: "bow-linear",
		Labels:    []string{"Not Spam", "Spam"},
		Lowercase: true,
		Vocab:     []string{"buy", "now", "click", "here", "lunch"},
		Weights: [][]float64{
			{-1, -1, -1, -1, 2},
			{1, 1, 1, 1, -2},
		},
		Bias: []float64{0, 0},
	}
	data, err := json.Marshal(art)
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, classifier.ArtifactFile), data, 0o644))

	cfg := config.Default()
	cfg.Model.Path = dir

	svc, err := service.Load(context.Background(), cfg.Model, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	return NewServer(cfg, svc, nil, zap.NewNop())
}

func TestServerClassify(t *testing.T) {
	s := setupServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/classify", strings.NewReader(`{"text":"Buy now!!! Click here"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	var res models.ClassificationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 1, res.PredictedClass)
	assert.Equal(t, "Spam", res.Label)
	require.Len(t, res.Probabilities, 2)
	assert.InDelta(t, 1.0, res.Probabilities[0]+res.Probabilities[1], 1e-6)
	assert.Equal(t, res.Probabilities[res.PredictedClass], res.Confidence)
}

func TestServerPingAndCORS(t *testing.T) {
	s := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServerShutdownBeforeRun(t *testing.T) {
	s := setupServer(t)
	assert.NoError(t, s.Shutdown(context.Background()))
}
