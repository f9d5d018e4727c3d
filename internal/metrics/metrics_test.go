package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"disk-backup/internal/domain"
)

func TestObserveInventory(t *testing.T) {
	inv := domain.NewInventory()
	inv.Add("a.pdf")
	inv.Calls = 2
	ObserveInventory("metrics-test", inv)
	ObserveInventory("metrics-test", domain.NewInventory().Degrade(errors.New("down")))

	require.Equal(t, 1.0, testutil.ToFloat64(inventoryTotal.WithLabelValues("metrics-test", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(inventoryTotal.WithLabelValues("metrics-test", "degraded")))
	require.Equal(t, 2.0, testutil.ToFloat64(inventoryCalls.WithLabelValues("metrics-test")))
	require.Equal(t, 0.0, testutil.ToFloat64(inventoryFiles.WithLabelValues("metrics-test")))
}

func TestObserveUploadAndHandler(t *testing.T) {
	now := time.Now()
	ObserveUpload(domain.UploadResult{Phase: domain.UploadPhaseTransfer, StatusCode: 201, StartedAt: now, FinishedAt: now.Add(time.Second)})

	require.Equal(t, 1.0, testutil.ToFloat64(uploadTotal.WithLabelValues("transfer", "201")))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "disk_backup_upload_total")
	require.Contains(t, rec.Body.String(), "disk_backup_upload_duration_seconds")
}
