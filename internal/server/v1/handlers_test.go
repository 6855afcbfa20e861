package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/modelheap/registry-admin/internal/analytics"
	"github.com/modelheap/registry-admin/internal/core/domain"
	"github.com/modelheap/registry-admin/internal/core/modelname"
	"github.com/modelheap/registry-admin/internal/core/ports"
	"github.com/modelheap/registry-admin/internal/core/resolve"
	"github.com/modelheap/registry-admin/internal/server/middleware"
	v1 "github.com/modelheap/registry-admin/internal/server/v1"
	"github.com/modelheap/registry-admin/internal/store/model"
	"github.com/modelheap/registry-admin/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockRegistry is a mock implementation of ports.Registry
type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) Refresh(ctx context.Context) (*domain.RefreshSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshSummary), args.Error(1)
}

func (m *MockRegistry) Display(ctx context.Context, filter ports.ModelFilter) ([]resolve.DisplayEntry, *domain.SnapshotMeta, error) {
	args := m.Called(ctx, filter)
	var entries []resolve.DisplayEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]resolve.DisplayEntry)
	}
	var meta *domain.SnapshotMeta
	if args.Get(1) != nil {
		meta = args.Get(1).(*domain.SnapshotMeta)
	}
	return entries, meta, args.Error(2)
}

func (m *MockRegistry) Get(ctx context.Context, name string) (resolve.DisplayEntry, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(resolve.DisplayEntry), args.Error(1)
}

func (m *MockRegistry) Update(ctx context.Context, rec schema.ReferenceRecord) (*resolve.UnifiedModel, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resolve.UnifiedModel), args.Error(1)
}

func (m *MockRegistry) ExportCSV(ctx context.Context, filter ports.ModelFilter) ([]byte, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockAnalytics is a mock implementation of analytics.Service
type MockAnalytics struct {
	mock.Mock
}

func (m *MockAnalytics) Trend(ctx context.Context, name string, days int) ([]model.UsagePoint, error) {
	args := m.Called(ctx, name, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UsagePoint), args.Error(1)
}

func (m *MockAnalytics) TopModels(ctx context.Context, days, limit int) ([]model.ModelActivity, error) {
	args := m.Called(ctx, days, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ModelActivity), args.Error(1)
}

func setupEngine(reg ports.Registry, stats analytics.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	domain.InitValidator()

	engine := gin.New()
	engine.Use(middleware.ErrorHandler(zap.NewNop()))

	modelHandler := v1.NewModelHandler(reg)
	engine.GET("/api/v1/models", modelHandler.List)
	engine.GET("/api/v1/models/detail", modelHandler.Get)
	engine.PUT("/api/v1/models", modelHandler.Update)
	engine.GET("/api/v1/models/export", modelHandler.Export)
	engine.POST("/api/v1/refresh", modelHandler.Refresh)

	nameHandler := v1.NewNameHandler()
	engine.POST("/api/v1/names/parse", nameHandler.Parse)

	if stats != nil {
		analyticsHandler := v1.NewAnalyticsHandler(stats)
		engine.GET("/api/v1/stats/trends", analyticsHandler.Trend)
		engine.GET("/api/v1/stats/top", analyticsHandler.TopModels)
	}

	healthHandler := v1.NewHealthHandler(nil)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)

	return engine
}

func TestListModels(t *testing.T) {
	mockReg := new(MockRegistry)

	entries := []resolve.DisplayEntry{
		&resolve.GroupedModel{Name: "L3-8B", Grouped: true, AvailableBackends: []string{"koboldcpp"}},
		&resolve.UnifiedModel{Name: "Mistral-7B"},
	}
	meta := &domain.SnapshotMeta{ReferenceCount: 2, RecordCount: 3}

	mockReg.On("Display", mock.Anything, mock.MatchedBy(func(f ports.ModelFilter) bool {
		return f.Backend == "koboldcpp" && f.NSFW != nil && !*f.NSFW
	})).Return(entries, meta, nil)

	engine := setupEngine(mockReg, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/models?backend=koboldcpp&nsfw=false", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Object string            `json:"object"`
		Data   []json.RawMessage `json:"data"`
		Meta   struct {
			ReferenceCount int `json:"reference_count"`
		} `json:"meta"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "list", resp.Object)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 2, resp.Meta.ReferenceCount)
}

func TestListModels_InvalidNSFW(t *testing.T) {
	mockReg := new(MockRegistry)
	engine := setupEngine(mockReg, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/models?nsfw=banana", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockReg.AssertNotCalled(t, "Display", mock.Anything, mock.Anything)
}

func TestGetModel_NameWithSlash(t *testing.T) {
	mockReg := new(MockRegistry)
	mockReg.On("Get", mock.Anything, "koboldcpp/L3-8B").
		Return(&resolve.UnifiedModel{Name: "koboldcpp/L3-8B"}, nil)

	engine := setupEngine(mockReg, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/models/detail?name=koboldcpp%2FL3-8B", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got resolve.UnifiedModel
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "koboldcpp/L3-8B", got.Name)
}

func TestGetModel_MissingName(t *testing.T) {
	mockReg := new(MockRegistry)
	engine := setupEngine(mockReg, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/models/detail", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetModel_NotFound(t *testing.T) {
	mockReg := new(MockRegistry)
	mockReg.On("Get", mock.Anything, "ghost").
		Return(nil, domain.NotFoundError("Model 'ghost' not found"))

	engine := setupEngine(mockReg, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/models/detail?name=ghost", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not found")
}

func TestUpdateModel(t *testing.T) {
	mockReg := new(MockRegistry)

	mockReg.On("Update", mock.Anything, mock.MatchedBy(func(rec schema.ReferenceRecord) bool {
		// unknown catalogue fields must survive the bind
		_, hasQuant := rec.Extra["quant"]
		return rec.Name == "koboldcpp/L3-8B" && rec.Description == "updated" && hasQuant
	})).Return(&resolve.UnifiedModel{Name: "koboldcpp/L3-8B", Description: "updated"}, nil)

	engine := setupEngine(mockReg, nil)

	body := []byte(`{"name":"koboldcpp/L3-8B","description":"updated","quant":"Q4_K_M"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/v1/models", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got resolve.UnifiedModel
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "updated", got.Description)
	mockReg.AssertExpectations(t)
}

func TestUpdateModel_RequiresModelName(t *testing.T) {
	mockReg := new(MockRegistry)
	engine := setupEngine(mockReg, nil)

	// a backend prefix alone carries no base model name
	body := []byte(`{"name":"koboldcpp/","description":"x"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/v1/models", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockReg.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestRefreshEndpoint(t *testing.T) {
	mockReg := new(MockRegistry)
	mockReg.On("Refresh", mock.Anything).
		Return(&domain.RefreshSummary{ReferenceCount: 2, RecordCount: 3, EntryCount: 2}, nil)

	engine := setupEngine(mockReg, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/refresh", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var summary domain.RefreshSummary
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 3, summary.RecordCount)
}

func TestExportSetsDownloadHeaders(t *testing.T) {
	mockReg := new(MockRegistry)
	csv := []byte("name,grouped\nL3-8B,true\n")
	mockReg.On("ExportCSV", mock.Anything, mock.Anything).Return(csv, nil)

	engine := setupEngine(mockReg, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/models/export", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "models.csv")
	assert.Equal(t, string(csv), w.Body.String())
}

func TestParseNameEndpoint(t *testing.T) {
	engine := setupEngine(new(MockRegistry), nil)

	body := []byte(`{"name":"koboldcpp/TheBloke/L3-8B"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/names/parse", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Parsed     modelname.ParsedName `json:"parsed"`
		Canonical  string               `json:"canonical"`
		Variations []string             `json:"variations"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, modelname.BackendKoboldCpp, resp.Parsed.Backend)
	assert.Equal(t, "TheBloke", resp.Parsed.Author)
	assert.Equal(t, "L3-8B", resp.Parsed.ModelName)
	assert.Equal(t, "koboldcpp/TheBloke/L3-8B", resp.Canonical)
	assert.Contains(t, resp.Variations, "TheBloke/L3-8B")
	assert.Contains(t, resp.Variations, "aphrodite/TheBloke/L3-8B")
}

func TestParseNameEndpoint_RejectsEmptyName(t *testing.T) {
	engine := setupEngine(new(MockRegistry), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/names/parse", bytes.NewBufferString(`{"name":""}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrendEndpoint(t *testing.T) {
	mockStats := new(MockAnalytics)
	points := []model.UsagePoint{
		{Date: "2026-08-23", AvgWorkers: 3.5, MaxQueued: 12, PeakDayUsage: 400},
	}
	mockStats.On("Trend", mock.Anything, "L3-8B", 14).Return(points, nil)

	engine := setupEngine(new(MockRegistry), mockStats)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/stats/trends?name=L3-8B&days=14", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Model string            `json:"model"`
		Data  []model.UsagePoint `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "L3-8B", resp.Model)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, 3.5, resp.Data[0].AvgWorkers)
}

func TestTrendEndpoint_RequiresName(t *testing.T) {
	mockStats := new(MockAnalytics)
	engine := setupEngine(new(MockRegistry), mockStats)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/stats/trends", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockStats.AssertNotCalled(t, "Trend", mock.Anything, mock.Anything, mock.Anything)
}

func TestTopModelsEndpoint(t *testing.T) {
	mockStats := new(MockAnalytics)
	top := []model.ModelActivity{
		{ModelName: "L3-8B", PeakDayUsage: 900, AvgWorkers: 4.2},
		{ModelName: "Mistral-7B", PeakDayUsage: 300, AvgWorkers: 1.0},
	}
	mockStats.On("TopModels", mock.Anything, 7, 10).Return(top, nil)

	engine := setupEngine(new(MockRegistry), mockStats)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/stats/top", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []model.ModelActivity `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, "L3-8B", resp.Data[0].ModelName)
}

func TestHealthEndpoint(t *testing.T) {
	engine := setupEngine(new(MockRegistry), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.Contains(t, w.Body.String(), `"uptime"`)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/ready", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ready"`)
}
