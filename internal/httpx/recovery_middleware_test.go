package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library3d/internal/auth"
)

func TestRecoveryMiddleware_WritesInternalError(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	h := RecoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "boom", hook.LastEntry().Data["error"])
}

func TestAccessLogMiddleware_LogsAndCounts(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_requests_total"}, []string{"method", "status"})

	h := AccessLogMiddleware(logger, requests)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("tea"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pot", nil))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "/pot", entry.Data["path"])
	assert.Equal(t, http.StatusTeapot, entry.Data["status"])
	assert.Equal(t, int64(3), entry.Data["bytes"])
	assert.Equal(t, 1.0, testutil.ToFloat64(requests.WithLabelValues("GET", "418")))
}

func TestAccessLogMiddleware_RecordsAuthenticatedSubject(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	token, _, err := auth.GenerateToken("test-secret", "reader-7", RoleAdmin, time.Hour)
	require.NoError(t, err)

	var principal Principal
	inner := AuthMiddleware("test-secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, _ = PrincipalFrom(r)
	}))
	h := AccessLogMiddleware(logger, nil)(inner)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.True(t, principal.IsAdmin())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "reader-7", hook.LastEntry().Data["user_id"])
}
