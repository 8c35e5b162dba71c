package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/asaidimu/backoffice-search/backoffice"
	"github.com/asaidimu/backoffice-search/backoffice/offers"
	"github.com/asaidimu/backoffice-search/sqlstore"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) (*gin.Engine, *sqlstore.Store) {
	t.Helper()
	ctx := context.Background()
	store, err := sqlstore.Open(ctx, "sqlite3", ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	service, err := backoffice.NewSearchService(offers.NewResource(time.Now), store)
	require.NoError(t, err)
	require.NoError(t, service.Migrate(ctx))

	_, err = store.Insert(ctx, "offerer", map[string]any{"id": 1, "name": "Offerer"})
	require.NoError(t, err)
	_, err = store.Insert(ctx, "venue", map[string]any{"id": 1, "name": "Venue", "departementCode": "75", "managingOffererId": 1})
	require.NoError(t, err)
	_, err = store.Insert(ctx, "offer",
		map[string]any{"id": 1, "name": "Concert", "subcategoryId": "CONCERT", "venueId": 1, "dateCreated": time.Now()},
		map[string]any{"id": 2, "name": "Livre", "subcategoryId": "LIVRE_PAPIER", "venueId": 1, "dateCreated": time.Now()},
	)
	require.NoError(t, err)

	return NewRouter(backoffice.NewRegistry(service), zap.NewNop()), store
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestRouter_Health(t *testing.T) {
	r, _ := newRouter(t)
	w, env := do(t, r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRouter_Resources(t *testing.T) {
	r, _ := newRouter(t)
	w, env := do(t, r, http.MethodGet, "/api/v1/resources", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["offers"]`, string(env.Data))
}

func TestRouter_Fields(t *testing.T) {
	r, _ := newRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/v1/offers/fields", "")
	require.Equal(t, http.StatusOK, w.Code)
	var fields []struct {
		Name      string   `json:"name"`
		Operators []string `json:"operators"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &fields))
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "REGION")

	w, env = do(t, r, http.MethodGet, "/api/v1/bookings/fields", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "bookings")
}

func TestRouter_Search(t *testing.T) {
	r, _ := newRouter(t)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		check      func(t *testing.T, env envelope)
	}{
		{
			name:       "filters and warnings",
			path:       "/api/v1/offers/search",
			body:       `{"search":[{"search_field":"NAME","operator":"CONTAINS","value":"conc"},{"search_field":"COLOR","operator":"IN","value":["red"]}],"sort":"id","order":"asc"}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, env envelope) {
				var result backoffice.SearchResult
				require.NoError(t, json.Unmarshal(env.Data, &result))
				require.Len(t, result.Items, 1)
				assert.Equal(t, "Concert", result.Items[0]["name"])
				assert.Len(t, result.Warnings, 1)
				assert.False(t, result.HasMore)
			},
		},
		{
			name:       "limit reports more results",
			path:       "/api/v1/offers/search",
			body:       `{"search":[],"limit":1}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, env envelope) {
				var result backoffice.SearchResult
				require.NoError(t, json.Unmarshal(env.Data, &result))
				assert.Len(t, result.Items, 1)
				assert.True(t, result.HasMore)
			},
		},
		{
			name:       "malformed json",
			path:       "/api/v1/offers/search",
			body:       `{"search":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid sort",
			path:       "/api/v1/offers/search",
			body:       `{"sort":"ean"}`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, env envelope) {
				assert.Contains(t, env.Error, "ean")
			},
		},
		{
			name:       "unknown resource",
			path:       "/api/v1/bookings/search",
			body:       `{}`,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, r, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, env.Success)
			if tt.check != nil {
				tt.check(t, env)
			}
		})
	}
}

func TestRouter_StoreFailure(t *testing.T) {
	r, store := newRouter(t)
	require.NoError(t, store.Close())

	w, env := do(t, r, http.MethodPost, "/api/v1/offers/search", `{}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "search failed", env.Error)
}

func TestRequestID_Propagated(t *testing.T) {
	var seen string
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		seen = backoffice.RequestIDFrom(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(zap.NewNop()))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w, env := do(t, r, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", env.Error)
}
