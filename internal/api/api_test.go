package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iglide21/BabyBuddy-sub001/internal"
	"github.com/iglide21/BabyBuddy-sub001/internal/auth"
	"github.com/iglide21/BabyBuddy-sub001/internal/metrics"
	"github.com/iglide21/BabyBuddy-sub001/internal/service"
	"github.com/iglide21/BabyBuddy-sub001/internal/storage"
	"github.com/iglide21/BabyBuddy-sub001/internal/testutil"
)

const (
	testSecret = "test-secret"
	devToken   = "MOCK-TOKEN"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  map[string]any  `json:"meta"`
	Error map[string]any  `json:"error"`
}

func setupRouter(t *testing.T) (*gin.Engine, *Application) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := internal.NewNopLogger()
	app := NewApplication(logger, testutil.NewFileStore(t), metrics.NewCollector("babymax_test"))
	provider := auth.NewLocalAuthProvider(testSecret, devToken, logger)
	return NewRouter(app, provider), app
}

func do(t *testing.T, r http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != xlsxContentType && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func createBaby(t *testing.T, r http.Handler, token string) internal.Baby {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/api/babies", token, `{"name":" Mia ","weight_kg":3.2,"gender":"female"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var baby internal.Baby
	require.NoError(t, json.Unmarshal(env.Data, &baby))
	return baby
}

func signedToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.SignToken(testSecret, internal.User{ID: userID}, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	require.NoError(t, err)
	return token
}

// failingStore serves babies from a real store but fails feeding lists and
// profile updates the way a broken backend would.
type failingStore struct {
	storage.Store
}

func (s failingStore) ListFeedings(ctx context.Context, babyID string) ([]internal.Feeding, error) {
	return nil, internal.WrapStorage("list feedings", errors.New("connection reset"))
}

func (s failingStore) UpdateProfile(ctx context.Context, babyID string, fn storage.ProfileUpdateFunc) (*internal.Baby, error) {
	return nil, internal.WrapStorage("update profile", errors.New("disk full"))
}

func TestStorageFailureIs500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := internal.NewNopLogger()
	app := NewApplication(logger, failingStore{Store: testutil.NewFileStore(t)}, metrics.NewCollector("babymax_test"))
	r := NewRouter(app, auth.NewLocalAuthProvider(testSecret, devToken, logger))
	baby := createBaby(t, r, devToken)

	w, env := do(t, r, http.MethodGet, "/api/babies/"+baby.ID+"/feedings", devToken, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, env.Error)
	assert.EqualValues(t, http.StatusInternalServerError, env.Error["code"])
	assert.Contains(t, env.Error["message"], "Failed to fetch feedings")
	assert.Nil(t, env.Data)

	w, env = do(t, r, http.MethodPatch, "/api/babies/"+baby.ID, devToken, `{"weight_kg":4.2}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, env.Error)
	assert.EqualValues(t, http.StatusInternalServerError, env.Error["code"])
	assert.Contains(t, env.Error["message"], "disk full")
}

func TestHealthzIsPublic(t *testing.T) {
	r, _ := setupRouter(t)
	w, _ := do(t, r, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuthRequired(t *testing.T) {
	r, app := setupRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/babies", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotNil(t, env.Error)

	w, _ = do(t, r, http.MethodGet, "/api/babies", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Equal(t, 1.0, promtest.ToFloat64(app.Metrics().AuthFailures.WithLabelValues("missing_token")))
	assert.Equal(t, 1.0, promtest.ToFloat64(app.Metrics().AuthFailures.WithLabelValues("invalid_token")))
}

func TestBabyLifecycle(t *testing.T) {
	r, _ := setupRouter(t)
	baby := createBaby(t, r, devToken)
	assert.Equal(t, "Mia", baby.Name)
	assert.Equal(t, auth.DevUserID, baby.UserID)

	w, env := do(t, r, http.MethodGet, "/api/babies", devToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, env.Meta["count"])

	w, _ = do(t, r, http.MethodGet, "/api/babies/"+baby.ID, devToken, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/babies", devToken, `{"gender":"female"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodDelete, "/api/babies/"+baby.ID, devToken, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodGet, "/api/babies/"+baby.ID, devToken, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestForeignBabyIsNotFound(t *testing.T) {
	r, _ := setupRouter(t)
	baby := createBaby(t, r, devToken)
	other := signedToken(t, "someone-else")

	w, _ := do(t, r, http.MethodGet, "/api/babies/"+baby.ID, other, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = do(t, r, http.MethodPost, "/api/babies/"+baby.ID+"/feedings", other,
		`{"kind":"bottle","start_at":"2026-01-01T10:00:00Z","duration_minutes":5}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env := do(t, r, http.MethodGet, "/api/babies", other, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, env.Meta["count"])
}

func TestPatchBabyJournalsOnlyChanges(t *testing.T) {
	r, app := setupRouter(t)
	baby := createBaby(t, r, devToken)
	path := "/api/babies/" + baby.ID

	w, env := do(t, r, http.MethodPatch, path, devToken, `{"weight_kg":4.1,"gender":"female"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotNil(t, env.Meta["history"])
	var updated internal.Baby
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, 4.1, *updated.WeightKg)

	w, env = do(t, r, http.MethodPatch, path, devToken, `{"weight_kg":4.1,"gender":"female"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, env.Meta["history"])

	w, _ = do(t, r, http.MethodPatch, path, devToken, `{"name":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, r, http.MethodGet, path+"/history", devToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	var history []internal.BabyProfileHistory
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 1)
	assert.Equal(t, []string{"weight_kg"}, history[0].ChangedFields)
	assert.Equal(t, 3.2, *history[0].Previous.WeightKg)

	assert.Equal(t, 1.0, promtest.ToFloat64(app.Metrics().ProfileUpdates.WithLabelValues("journaled")))
	assert.Equal(t, 1.0, promtest.ToFloat64(app.Metrics().ProfileUpdates.WithLabelValues("unchanged")))
}

func TestFeedingDurations(t *testing.T) {
	r, app := setupRouter(t)
	baby := createBaby(t, r, devToken)
	path := "/api/babies/" + baby.ID + "/feedings"

	w, env := do(t, r, http.MethodPost, path, devToken, `{
		"kind":"breast","side":"both","start_at":"2026-01-01T10:00:00Z",
		"sessions":[
			{"start_at":"2026-01-01T10:00:00Z","end_at":"2026-01-01T10:05:00Z"},
			{"start_at":"2026-01-01T11:00:00Z","end_at":"2026-01-01T11:20:00Z"}
		]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var feeding internal.Feeding
	require.NoError(t, json.Unmarshal(env.Data, &feeding))
	assert.Equal(t, 25, feeding.DurationMinutes)
	assert.Len(t, feeding.Sessions, 2)

	w, env = do(t, r, http.MethodPut, path+"/"+feeding.ID, devToken,
		`{"kind":"breast","start_at":"2026-01-01T10:00:00Z","duration_minutes":"15"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &feeding))
	assert.Equal(t, 15, feeding.DurationMinutes)

	w, _ = do(t, r, http.MethodPost, path, devToken, `{
		"kind":"breast","start_at":"2026-01-01T10:00:00Z",
		"sessions":[{"start_at":"2026-01-01T10:05:00Z","end_at":"2026-01-01T10:00:00Z"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, path, devToken,
		`{"kind":"bottle","start_at":"2026-01-01T10:00:00Z","duration_minutes":-3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodGet, path+"/missing", devToken, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = do(t, r, http.MethodGet, path, devToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, env.Meta["count"])

	assert.Equal(t, 1.0, promtest.ToFloat64(app.Metrics().EventsRecorded.WithLabelValues("feeding")))
}

func TestSleepDurationFromEnd(t *testing.T) {
	r, _ := setupRouter(t)
	baby := createBaby(t, r, devToken)

	w, env := do(t, r, http.MethodPost, "/api/babies/"+baby.ID+"/sleeps", devToken,
		`{"start_at":"2026-01-01T20:00:00Z","end_at":"2026-01-01T21:30:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sleep internal.Sleep
	require.NoError(t, json.Unmarshal(env.Data, &sleep))
	assert.Equal(t, 90, sleep.DurationMinutes)

	w, _ = do(t, r, http.MethodPost, "/api/babies/"+baby.ID+"/sleeps", devToken,
		`{"start_at":"2026-01-01T20:00:00Z","end_at":"2026-01-01T19:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPendingReminders(t *testing.T) {
	r, _ := setupRouter(t)
	baby := createBaby(t, r, devToken)
	path := "/api/babies/" + baby.ID + "/reminders"

	w, _ := do(t, r, http.MethodPost, path, devToken, `{"title":"Vitamin D","remind_at":"2026-01-02T09:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = do(t, r, http.MethodPost, path, devToken, `{"title":"Checkup","remind_at":"2026-01-01T09:00:00Z","done":true}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := do(t, r, http.MethodGet, path+"?pending=true", devToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	var reminders []internal.Reminder
	require.NoError(t, json.Unmarshal(env.Data, &reminders))
	require.Len(t, reminders, 1)
	assert.Equal(t, "Vitamin D", reminders[0].Title)

	w, env = do(t, r, http.MethodGet, path, devToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, env.Meta["count"])
}

func TestSummaryAndExport(t *testing.T) {
	r, _ := setupRouter(t)
	baby := createBaby(t, r, devToken)
	base := "/api/babies/" + baby.ID
	hourAgo := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)

	w, _ := do(t, r, http.MethodPost, base+"/feedings", devToken,
		`{"kind":"bottle","amount_ml":120,"start_at":"`+hourAgo+`","duration_minutes":10}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = do(t, r, http.MethodPost, base+"/diapers", devToken, `{"kind":"wet","occurred_at":"`+hourAgo+`"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = do(t, r, http.MethodPost, base+"/measurements", devToken, `{"weight_kg":3.4,"measured_at":"`+hourAgo+`"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := do(t, r, http.MethodGet, base+"/summary", devToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	var summary service.DailySummary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 1, summary.FeedCount)
	assert.Equal(t, 10, summary.FeedMinutes)
	assert.Equal(t, 120.0, summary.BottleML)
	assert.Equal(t, 1, summary.DiaperCounts["wet"])

	w, _ = do(t, r, http.MethodGet, base+"/export", devToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), baby.ID)

	wb, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows(service.SheetFeedings)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := setupRouter(t)
	do(t, r, http.MethodGet, "/healthz", "", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `babymax_test_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}
