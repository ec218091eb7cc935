//go:build integration
// +build integration

package integration_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeflux/analytics/internal/analytics"
	"github.com/homeflux/analytics/internal/cache"
	"github.com/homeflux/analytics/internal/database"
	"github.com/homeflux/analytics/internal/models"
	"github.com/homeflux/analytics/internal/server"
	"github.com/homeflux/analytics/internal/service"
)

const testOwnerID = 42

// Helper function to get environment variables with defaults
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func connString() string {
	dbHost := getEnvOrDefault("DB_HOST", "db")
	dbPort := getEnvOrDefault("DB_PORT", "5432")
	dbUser := getEnvOrDefault("DB_USER", "homeflux")
	dbPass := getEnvOrDefault("DB_PASSWORD", "homeflux")
	dbName := getEnvOrDefault("DB_NAME", "homeflux")

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPass, dbName,
	)
}

func setupTestDB(t *testing.T) *database.PostgresRepo {
	connStr := connString()

	repo, err := database.NewPostgresRepo(connStr)
	require.NoError(t, err)

	// Clean up any existing test data
	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"device_events", "operate_events", "devices"} {
		_, err = db.Exec("TRUNCATE TABLE " + table + " CASCADE")
		require.NoError(t, err)
	}

	return repo
}

func seedFixtures(t *testing.T) {
	db, err := sql.Open("postgres", connString())
	require.NoError(t, err)
	defer db.Close()

	devices := []struct {
		id         int64
		name       string
		powerWatts float64
	}{
		{1, "Living Room Heater", 2000},
		{2, "Hall Light", 60},
		{3, "TV", 120},
	}
	for _, d := range devices {
		_, err = db.Exec(`
            INSERT INTO devices (id, name, power_watts, owner_id, online, open)
            VALUES ($1, $2, $3, $4, false, false)
        `, d.id, d.name, d.powerWatts, testOwnerID)
		require.NoError(t, err)
	}

	now := time.Now().UTC()
	// A week of daily two-hour heater runs
	for i := 1; i <= 7; i++ {
		start := now.Add(-time.Duration(i) * 24 * time.Hour)
		_, err = db.Exec(`
            INSERT INTO device_events (device_id, event_time, kind)
            VALUES (1, $1, 'online'), (1, $2, 'offline')
        `, start, start.Add(2*time.Hour))
		require.NoError(t, err)
	}

	// Light and TV switched on together on three evenings
	for i := 1; i <= 3; i++ {
		at := now.Add(-time.Duration(i)*24*time.Hour).Truncate(10 * time.Minute)
		_, err = db.Exec(`
            INSERT INTO operate_events (device_id, event_time, action)
            VALUES (2, $1, 'open'), (3, $2, 'open')
        `, at, at.Add(time.Minute))
		require.NoError(t, err)
	}
}

func setupTestEnvironment(t *testing.T) (*httptest.Server, *database.PostgresRepo) {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	repo := setupTestDB(t)
	seedFixtures(t)

	store, err := cache.NewLRU(64)
	require.NoError(t, err)

	svc := service.New(repo, repo, repo, analytics.PairGreedy, logger)
	srv := server.New(svc, logger, store, server.DefaultConfig())

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		ts.Close()
		repo.Close()
	})
	return ts, repo
}

func getJSON(t *testing.T, url string, out interface{}) int {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal(body, out))
	}
	return resp.StatusCode
}

func TestUsageReportEndToEnd(t *testing.T) {
	ts, _ := setupTestEnvironment(t)

	var report service.UsageReport
	status := getJSON(t, fmt.Sprintf("%s/api/owners/%d/usage-report", ts.URL, testOwnerID), &report)
	require.Equal(t, http.StatusOK, status)

	require.Len(t, report.DeviceStatistics, 3)
	heater := report.DeviceStatistics[0]
	assert.Equal(t, int64(1), heater.DeviceID)
	assert.Equal(t, 7, heater.SessionCount)
	assert.InDelta(t, 14.0, heater.TotalRunHours, 0.01)
	assert.InDelta(t, 28.0, heater.TotalConsumptionKWh, 0.05)

	require.Len(t, report.MaintenanceIndicators, 3)
	assert.Equal(t, models.RiskLow, report.MaintenanceIndicators[0].RiskLevel)
	assert.True(t, report.UsagePatterns.HasRunStats)
}

func TestDeviceHistoryEndToEnd(t *testing.T) {
	ts, _ := setupTestEnvironment(t)

	var history service.DeviceHistory
	status := getJSON(t, ts.URL+"/api/devices/1/history", &history)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "Living Room Heater", history.Device.Name)
	assert.NotEmpty(t, history.Daily)
	assert.InDelta(t, 28.0, history.TotalKWh, 0.05)

	status = getJSON(t, ts.URL+"/api/devices/9999/history", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestForecastEndToEnd(t *testing.T) {
	ts, _ := setupTestEnvironment(t)

	var fc service.DeviceForecast
	status := getJSON(t, ts.URL+"/api/devices/1/forecast", &fc)
	require.Equal(t, http.StatusOK, status)

	assert.Len(t, fc.Forecast.Points, 30)
	assert.Len(t, fc.History, 7)
	require.NotNil(t, fc.Forecast.Confidence)
	// Identical daily runs make for a very confident forecast.
	assert.InDelta(t, 1.0, *fc.Forecast.Confidence, 0.05)
}

func TestScenesEndToEnd(t *testing.T) {
	ts, _ := setupTestEnvironment(t)

	var recs []models.SceneRecommendation
	status := getJSON(t, fmt.Sprintf("%s/api/owners/%d/scenes", ts.URL, testOwnerID), &recs)
	require.Equal(t, http.StatusOK, status)

	require.NotEmpty(t, recs)
	rec := recs[0]
	assert.Equal(t, models.SceneSequential, rec.Type)
	assert.Equal(t, "Hall Light", rec.TriggerDeviceName)
	assert.Equal(t, "TV", rec.TargetDeviceName)
}

func TestIngestBatchEndToEnd(t *testing.T) {
	ts, repo := setupTestEnvironment(t)

	svc := service.New(repo, repo, repo, analytics.PairGreedy, logrus.New())
	require.NoError(t, svc.ApplyEventBatch(context.Background(), []models.EventDetail{
		{DeviceID: 2, Open: true},
	}))

	dev, err := repo.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, dev.Online)
	assert.True(t, dev.Open)

	// The appended online event shows up in the history window.
	var history service.DeviceHistory
	status := getJSON(t, ts.URL+"/api/devices/2/history", &history)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, history.Daily)
}
