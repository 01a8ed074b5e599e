package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	wsAdapter "github.com/munchmtxi/realtime-gateway/internal/adapters/primary/websocket"
	"github.com/munchmtxi/realtime-gateway/internal/core/domain"
)

// mockAuditReader is a mock implementation of DispatchAuditReader.
type mockAuditReader struct {
	mock.Mock
}

func (m *mockAuditReader) ListRecent(ctx context.Context, limit int) ([]domain.DispatchRecord, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.DispatchRecord), args.Error(1)
}

func (m *mockAuditReader) CountByEvent(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]int64), args.Error(1)
}

func getDispatches(handler *StatsHandler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(stdhttp.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.Dispatches(rec, req)
	return rec
}

func TestStatsHandler_Dispatches(t *testing.T) {
	audit := &mockAuditReader{}
	handler := NewStatsHandler(wsAdapter.NewHub(testLogger()), audit, testLogger())

	records := []domain.DispatchRecord{
		{
			ID:         uuid.New(),
			Event:      "ride:updated",
			Rooms:      []string{"ride:7"},
			Recipients: 2,
			Delivered:  true,
			EmittedAt:  time.Now(),
		},
	}
	audit.On("ListRecent", mock.Anything, 50).Return(records, nil)
	audit.On("CountByEvent", mock.Anything).Return(map[string]int64{"ride:updated": 12}, nil)

	rec := getDispatches(handler, "/api/v1/stats/dispatches")
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	var resp struct {
		Data dispatchStatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Recent, 1)
	assert.Equal(t, "ride:updated", resp.Data.Recent[0].Event)
	assert.Equal(t, []string{"ride:7"}, resp.Data.Recent[0].Rooms)
	assert.Equal(t, int64(12), resp.Data.CountsByEvent["ride:updated"])
	audit.AssertExpectations(t)
}

func TestStatsHandler_DispatchesHonorsLimit(t *testing.T) {
	audit := &mockAuditReader{}
	handler := NewStatsHandler(wsAdapter.NewHub(testLogger()), audit, testLogger())

	audit.On("ListRecent", mock.Anything, 5).Return([]domain.DispatchRecord{}, nil)
	audit.On("CountByEvent", mock.Anything).Return(map[string]int64{}, nil)

	rec := getDispatches(handler, "/api/v1/stats/dispatches?limit=5")
	assert.Equal(t, stdhttp.StatusOK, rec.Code)
	audit.AssertExpectations(t)
}

func TestStatsHandler_DispatchesRejectsBadLimit(t *testing.T) {
	audit := &mockAuditReader{}
	handler := NewStatsHandler(wsAdapter.NewHub(testLogger()), audit, testLogger())

	for _, limit := range []string{"0", "-1", "9999", "abc"} {
		rec := getDispatches(handler, "/api/v1/stats/dispatches?limit="+limit)
		assert.Equal(t, stdhttp.StatusBadRequest, rec.Code, "limit=%s", limit)
	}
	audit.AssertNotCalled(t, "ListRecent", mock.Anything, mock.Anything)
}

func TestStatsHandler_DispatchesWithoutAuditStore(t *testing.T) {
	handler := NewStatsHandler(wsAdapter.NewHub(testLogger()), nil, testLogger())

	rec := getDispatches(handler, "/api/v1/stats/dispatches")
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
}
