package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Dosada05/sports-meet/handlers"
	"github.com/Dosada05/sports-meet/live"
	"github.com/Dosada05/sports-meet/models"
	"github.com/Dosada05/sports-meet/repositories"
	"github.com/Dosada05/sports-meet/routes"
	"github.com/Dosada05/sports-meet/services"
	"github.com/Dosada05/sports-meet/storage"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret   = "handler-test-secret"
	testUser     = "admin"
	testPassword = "correct horse"
)

var fragments = map[string]string{
	"games/10.json":      `[[{"grade":"高一","name":"男子组100M预赛","time":"09:00","link":"/game/10001"}],[],[],[]]`,
	"games/20.json":      `[[],[],[{"grade":"高三","name":"铅球","time":"09:30","link":""}],[]]`,
	"players/10001.json": `{"name":"高一男子组100米预赛","players":[[{"road":"1","name":"张三","data":"-"}]]}`,
	"h2c.json":           `{"张三":"高一(1)班"}`,
}

func newServer(t *testing.T, capabilities ...string) *httptest.Server {
	t.Helper()
	return newServerWith(t, fragments, capabilities...)
}

func newServerWith(t *testing.T, files map[string]string, capabilities ...string) *httptest.Server {
	t.Helper()
	if len(capabilities) == 0 {
		capabilities = []string{routes.CapabilityAggregate, routes.CapabilitySplitFiles}
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := storage.NewMemoryStore()
	for k, v := range files {
		require.NoError(t, store.Put(ctx, k, []byte(v)))
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	keys := repositories.DefaultKeys()
	aggregates := repositories.NewAggregateRepository(store, keys)
	fragRepo := repositories.NewFragmentRepository(store, keys)
	backups := repositories.NewBackupRepository(store, keys)
	locker := storage.NewLocker()
	layout := models.DefaultMeetLayout()

	hub := live.NewHub(logger)
	go hub.Run(ctx)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	query := services.NewQueryService(aggregates, layout)
	docs := services.NewDocumentService(aggregates, fragRepo, backups, locker, hub,
		services.DocumentServiceConfig{Layout: layout, MaxBackups: 5}, logger)
	frags := services.NewFragmentService(fragRepo, locker, hub, logger)
	auth := services.NewAuthService(testUser, string(hash))

	router := chi.NewRouter()
	routes.SetupRoutes(router, routes.Options{
		Capabilities: capabilities,
		JWTSecret:    testSecret,
	}, routes.Handlers{
		Health:    handlers.NewHealthHandler(keys.Aggregate),
		Auth:      handlers.NewAuthHandler(auth, testSecret, 0),
		Data:      handlers.NewDataHandler(query, docs, 0),
		Schedule:  handlers.NewScheduleHandler(query),
		Admin:     handlers.NewAdminHandler(docs, 0),
		Fragments: handlers.NewFragmentHandler(frags, 0),
		WebSocket: handlers.NewWebSocketHandler(hub, nil, logger),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, token, body string) (int, map[string]interface{}) {
	t.Helper()
	status, raw := doRaw(t, srv, method, path, token, body)
	var out map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return status, out
}

func doRaw(t *testing.T, srv *httptest.Server, method, path, token, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func login(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	status, body := do(t, srv, http.MethodPost, "/api/auth/login", "",
		`{"username":"`+testUser+`","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusOK, status)
	token, ok := body["token"].(string)
	require.True(t, ok)
	return token
}

func merged(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	srv := newServer(t)
	token := login(t, srv)
	status, _ := do(t, srv, http.MethodPost, "/api/merge", token, "")
	require.Equal(t, http.StatusOK, status)
	return srv, token
}

func TestHealth(t *testing.T) {
	srv := newServer(t)
	status, body := do(t, srv, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "sports_data.json", body["dataFile"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestLogin(t *testing.T) {
	srv := newServer(t)

	status, _ := do(t, srv, http.MethodPost, "/api/auth/login", "", `{"username":"admin","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, srv, http.MethodPost, "/api/auth/login", "", `{"username":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	assert.NotEmpty(t, login(t, srv))
}

func TestData_MissingAggregate(t *testing.T) {
	srv := newServer(t)
	status, body := do(t, srv, http.MethodGet, "/api/data", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "error")
}

func TestData_MalformedAggregate(t *testing.T) {
	srv := newServerWith(t, map[string]string{"sports_data.json": `{"games":`})
	status, body := do(t, srv, http.MethodGet, "/api/data", "", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotEmpty(t, body["error"])
	assert.Contains(t, body["details"], "sports_data.json")
}

func TestMerge_RequiresToken(t *testing.T) {
	srv := newServer(t)
	status, _ := do(t, srv, http.MethodPost, "/api/merge", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestMerge_ThenRead(t *testing.T) {
	srv, _ := merged(t)

	status, raw := doRaw(t, srv, http.MethodGet, "/api/data", "", "")
	require.Equal(t, http.StatusOK, status)
	var doc struct {
		Games   map[string]json.RawMessage   `json:"games"`
		Players map[string]models.PlayerList `json:"players"`
		Aliases map[string]string            `json:"aliases"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Contains(t, doc.Games, "第一天")
	assert.Contains(t, doc.Games, "第二天")
	assert.Contains(t, doc.Games, "classMapping")
	assert.Equal(t, "高一(1)班", doc.Players["高一男子组100米预赛"].Players[0][0].Class)
	assert.Equal(t, "高一男子组100米预赛", doc.Aliases["10001"])

	status, raw = doRaw(t, srv, http.MethodGet, "/api/games/1", "", "")
	require.Equal(t, http.StatusOK, status)
	var day models.ScheduleDay
	require.NoError(t, json.Unmarshal(raw, &day))
	require.Len(t, day, 4)
	assert.Equal(t, "男子组100M预赛", day[0][0].Name)

	status, _ = doRaw(t, srv, http.MethodGet, "/api/games/3", "", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSchedule(t *testing.T) {
	srv, _ := merged(t)

	status, raw := doRaw(t, srv, http.MethodGet, "/api/schedule/"+url.PathEscape("第二天"), "", "")
	require.Equal(t, http.StatusOK, status)
	var schedule models.Schedule
	require.NoError(t, json.Unmarshal(raw, &schedule))
	require.Len(t, schedule.Field.Morning, 1)
	assert.Equal(t, "铅球", schedule.Field.Morning[0].Name)
	assert.Empty(t, schedule.Track.Morning)

	status, _ = doRaw(t, srv, http.MethodGet, "/api/schedule/3", "", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRosters(t *testing.T) {
	srv, _ := merged(t)

	status, raw := doRaw(t, srv, http.MethodGet, "/api/rosters?"+url.Values{"name": {"男子组100M预赛"}, "grade": {"高一"}, "time": {"09:00"}}.Encode(), "", "")
	require.Equal(t, http.StatusOK, status)
	var roster models.PlayerList
	require.NoError(t, json.Unmarshal(raw, &roster))
	assert.Equal(t, "高一男子组100米预赛", roster.Name)
	assert.Equal(t, "张三", roster.Players[0][0].Name)

	status, body := do(t, srv, http.MethodGet, "/api/rosters?"+url.Values{"name": {"不存在"}, "grade": {"高一"}}.Encode(), "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "不存在", body["name"])
	assert.Equal(t, []interface{}{}, body["players"])

	status, raw = doRaw(t, srv, http.MethodGet, "/api/players/10001", "", "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(raw, &roster))
	assert.Equal(t, "高一男子组100米预赛", roster.Name)

	status, _ = doRaw(t, srv, http.MethodGet, "/api/players/unknown", "", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSearchAthletes(t *testing.T) {
	srv, _ := merged(t)

	status, body := do(t, srv, http.MethodGet, "/api/athletes?q="+url.QueryEscape("张"), "", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["count"])

	status, body = do(t, srv, http.MethodGet, "/api/athletes?q=", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["count"])
}

func TestPostData(t *testing.T) {
	srv, token := merged(t)

	for _, body := range []string{`null`, `[]`, `"x"`, `{"games":`} {
		status, _ := do(t, srv, http.MethodPost, "/api/data", token, body)
		assert.Equal(t, http.StatusBadRequest, status, body)
	}

	_, current := doRaw(t, srv, http.MethodGet, "/api/data", "", "")
	status, _ := do(t, srv, http.MethodPost, "/api/data", "", string(current))
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := do(t, srv, http.MethodPost, "/api/data", token, string(current))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["timestamp"])
	assert.NotEmpty(t, body["backupId"])

	status, body = do(t, srv, http.MethodGet, "/api/backups", token, "")
	require.Equal(t, http.StatusOK, status)
	backups, ok := body["backups"].([]interface{})
	require.True(t, ok)
	assert.Len(t, backups, 1)
}

func TestPostGamesAndPlayers(t *testing.T) {
	srv, token := merged(t)

	status, _ := do(t, srv, http.MethodPost, "/api/games/1", token, `{"not":"an array"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, srv, http.MethodPost, "/api/games/1", token,
		`[[{"grade":"高二","name":"跳高","time":"10:00","link":""}],[],[],[]]`)
	require.Equal(t, http.StatusOK, status)

	_, raw := doRaw(t, srv, http.MethodGet, "/api/games/"+url.PathEscape("第一天"), "", "")
	var day models.ScheduleDay
	require.NoError(t, json.Unmarshal(raw, &day))
	assert.Equal(t, "跳高", day[0][0].Name)

	status, _ = do(t, srv, http.MethodPost, "/api/players/10001", token,
		`{"name":"高一男子组100米预赛","players":[[{"road":"4","name":"钱七","data":"12.5"}]]}`)
	require.Equal(t, http.StatusOK, status)

	_, raw = doRaw(t, srv, http.MethodGet, "/api/players/10001", "", "")
	var roster models.PlayerList
	require.NoError(t, json.Unmarshal(raw, &roster))
	assert.Equal(t, "钱七", roster.Players[0][0].Name)
}

func TestMerge_DryRun(t *testing.T) {
	srv := newServer(t)
	token := login(t, srv)

	status, body := do(t, srv, http.MethodPost, "/api/merge", token, `{"dryRun":true}`)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "document")
	assert.Contains(t, body, "report")

	status, _ = do(t, srv, http.MethodGet, "/api/data", "", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, srv, http.MethodPost, "/api/merge", token, `{"unknown":1}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestFragments(t *testing.T) {
	srv := newServer(t)
	token := login(t, srv)

	status, body := do(t, srv, http.MethodGet, "/api/fragments/games", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{"10", "20"}, body["files"])

	status, _ = doRaw(t, srv, http.MethodGet, "/api/fragments/games/10.json", "", "")
	assert.Equal(t, http.StatusOK, status)

	status, body = do(t, srv, http.MethodGet, "/api/fragments/players/10001", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "高一男子组100米预赛", body["name"])

	status, _ = do(t, srv, http.MethodPost, "/api/fragments/class-mapping", token, `{"李四":"高一(2)班"}`)
	require.Equal(t, http.StatusOK, status)

	status, body = do(t, srv, http.MethodGet, "/api/fragments/class-mapping", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "高一(2)班", body["李四"])

	status, _ = do(t, srv, http.MethodGet, "/api/fragments/players/missing", "", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCapabilities(t *testing.T) {
	srv := newServer(t, routes.CapabilityAggregate)

	status, _ := do(t, srv, http.MethodGet, "/api/fragments/games", "", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, srv, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestWebSocket_RejectsForeignOrigin(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := live.NewHub(logger)
	go hub.Run(ctx)

	router := chi.NewRouter()
	router.Get("/ws/{room}", handlers.NewWebSocketHandler(hub, []string{"http://meet.example"}, logger).ServeWs)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/data"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": {"http://elsewhere.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": {"http://meet.example"}})
	require.NoError(t, err)
	require.NoError(t, conn.Close())
}
