package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"

	"github.com/seekmark/seekmark/internal/agent"
	"github.com/seekmark/seekmark/internal/bridge"
	"github.com/seekmark/seekmark/internal/domain"
	"github.com/seekmark/seekmark/internal/httpserver/deps"
	"github.com/seekmark/seekmark/internal/logger"
	"github.com/seekmark/seekmark/internal/playback"
	"github.com/seekmark/seekmark/internal/retry"
	redisstore "github.com/seekmark/seekmark/internal/store/redis"
	"github.com/seekmark/seekmark/internal/tabs"
)

// fakeDriver simulates the extension's tab surface.
type fakeDriver struct {
	tabs        []tabs.Tab
	nextID      int
	stateOK     bool
	currentTime float64
	title       string
	seekOK      bool
	sendErr     error
}

func (d *fakeDriver) Query(_ context.Context, _ string) ([]tabs.Tab, error) {
	out := make([]tabs.Tab, len(d.tabs))
	copy(out, d.tabs)
	return out, nil
}

func (d *fakeDriver) Active(_ context.Context) (tabs.Tab, error) {
	for _, t := range d.tabs {
		if t.Active {
			return t, nil
		}
	}
	return tabs.Tab{}, tabs.ErrNoActiveTab
}

func (d *fakeDriver) Create(_ context.Context, url string) (tabs.Tab, error) {
	d.nextID++
	tab := tabs.Tab{ID: d.nextID, URL: url, Active: true}
	d.tabs = append(d.tabs, tab)
	return tab, nil
}

func (d *fakeDriver) Update(_ context.Context, id int, url string, active bool) (tabs.Tab, error) {
	for i, t := range d.tabs {
		if t.ID == id {
			d.tabs[i].URL = url
			d.tabs[i].Active = active
			return d.tabs[i], nil
		}
	}
	return tabs.Tab{}, errors.New("tab not found")
}

func (d *fakeDriver) Send(_ context.Context, _ int, msg json.RawMessage) (json.RawMessage, error) {
	if d.sendErr != nil {
		return nil, d.sendErr
	}

	var m agent.Message
	if err := json.Unmarshal(msg, &m); err != nil {
		return nil, err
	}

	switch m.Type {
	case agent.TypeGetVideoState:
		if !d.stateOK {
			return json.RawMessage(`{"ok":false}`), nil
		}
		resp, _ := json.Marshal(agent.StateResponse{
			OK:          true,
			CurrentTime: d.currentTime,
			Title:       d.title,
		})
		return resp, nil
	case agent.TypeSeekTo:
		if d.seekOK {
			return json.RawMessage(`{"ok":true}`), nil
		}
	}
	return json.RawMessage(`{"ok":false}`), nil
}

// stoppedClock makes the seek retry loop run without real delays.
type stoppedClock struct{}

func (stoppedClock) Now() time.Time { return time.Time{} }
func (stoppedClock) Sleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

var _ retry.Clock = stoppedClock{}

func newTestDeps(t *testing.T, driver *fakeDriver) deps.Deps {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := logger.New("error", false)
	store := redisstore.NewStore(client)
	agentClient := agent.NewClient(driver)

	return deps.Deps{
		Logger:    log,
		StartTime: time.Now(),
		TimeNow:   time.Now,
		WatchHost: "www.youtube.com",
		Store:     store,
		Bridge:    bridge.New(time.Second, time.Minute, log),
		Driver:    driver,
		Agent:     agentClient,
		Synchronizer: playback.New(driver, agentClient, playback.Options{
			Host:         "www.youtube.com",
			SettleDelay:  800 * time.Millisecond,
			SeekAttempts: 15,
			SeekBackoff:  500 * time.Millisecond,
			Clock:        stoppedClock{},
		}, log),
		PullTimeout: 10 * time.Millisecond,
	}
}

func newRouter(d deps.Deps) chi.Router {
	r := chi.NewRouter()
	r.Get("/api/bookmarks", ListBookmarks(d))
	r.Post("/api/bookmarks", AddBookmark(d))
	r.Delete("/api/bookmarks/{videoID}/{bookmarkID}", DeleteBookmark(d))
	r.Post("/api/jump", Jump(d))
	r.Get("/api/state", State(d))
	r.Get("/bridge/pull", BridgePull(d))
	r.Post("/bridge/push", BridgePush(d))
	r.Get("/healthz", Healthz(d))
	r.Get("/readyz", Readyz(d))
	return r
}

func TestAddBookmarkRecordsActiveTab(t *testing.T) {
	driver := &fakeDriver{
		tabs:        []tabs.Tab{{ID: 1, URL: "https://www.youtube.com/watch?v=abc123", Active: true}},
		nextID:      1,
		stateOK:     true,
		currentTime: 75.9,
		title:       "Cool Talk - YouTube",
	}
	d := newTestDeps(t, driver)
	r := newRouter(d)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bookmarks", nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/bookmarks = %d, want 201 (%s)", rec.Code, rec.Body)
	}

	var b domain.Bookmark
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if b.Time != 75 {
		t.Errorf("bookmark time = %d, want floored 75", b.Time)
	}
	if b.VideoTitle != "Cool Talk" {
		t.Errorf("bookmark title = %q, want cleaned", b.VideoTitle)
	}

	stored, _ := d.Store.Load(context.Background(), "abc123")
	if len(stored) != 1 || stored[0].ID != b.ID {
		t.Errorf("bookmark not persisted: %+v", stored)
	}
}

func TestAddBookmarkNotOnWatchPage(t *testing.T) {
	driver := &fakeDriver{
		tabs: []tabs.Tab{{ID: 1, URL: "https://example.com/", Active: true}},
	}
	d := newTestDeps(t, driver)
	r := newRouter(d)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bookmarks", nil))

	if rec.Code != http.StatusConflict {
		t.Errorf("POST /api/bookmarks off a watch page = %d, want 409", rec.Code)
	}
}

func TestAddBookmarkPageNotReady(t *testing.T) {
	driver := &fakeDriver{
		tabs:    []tabs.Tab{{ID: 1, URL: "https://www.youtube.com/watch?v=abc123", Active: true}},
		stateOK: false,
	}
	d := newTestDeps(t, driver)
	r := newRouter(d)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bookmarks", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("POST /api/bookmarks without media element = %d, want 503", rec.Code)
	}
}

func TestListBookmarksNewestFirst(t *testing.T) {
	driver := &fakeDriver{}
	d := newTestDeps(t, driver)
	ctx := context.Background()

	_ = d.Store.Save(ctx, "v1", []domain.Bookmark{
		{ID: "old", Time: 1, CreatedAt: 1000},
		{ID: "new", Time: 2, CreatedAt: 3000},
	})

	r := newRouter(d)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/bookmarks?videoId=v1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/bookmarks = %d, want 200", rec.Code)
	}

	var res listResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.VideoID != "v1" {
		t.Errorf("videoId = %q", res.VideoID)
	}
	if len(res.Bookmarks) != 2 || res.Bookmarks[0].ID != "new" {
		t.Errorf("bookmarks = %+v, want newest first", res.Bookmarks)
	}
}

func TestListBookmarksEmptyCollection(t *testing.T) {
	d := newTestDeps(t, &fakeDriver{})
	r := newRouter(d)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/bookmarks?videoId=never-seen", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/bookmarks for unknown video = %d, want 200", rec.Code)
	}

	var res listResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Bookmarks == nil || len(res.Bookmarks) != 0 {
		t.Errorf("bookmarks = %v, want empty array", res.Bookmarks)
	}
}

func TestDeleteBookmark(t *testing.T) {
	d := newTestDeps(t, &fakeDriver{})
	ctx := context.Background()

	_ = d.Store.Save(ctx, "v1", []domain.Bookmark{{ID: "a", Time: 42, CreatedAt: 1000}})

	r := newRouter(d)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/bookmarks/v1/a", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE = %d, want 204", rec.Code)
	}

	stored, _ := d.Store.Load(ctx, "v1")
	if len(stored) != 0 {
		t.Errorf("bookmark not removed: %+v", stored)
	}
}

func TestJump(t *testing.T) {
	driver := &fakeDriver{seekOK: true}
	d := newTestDeps(t, driver)
	r := newRouter(d)

	body, _ := json.Marshal(jumpRequest{VideoID: "abc123", Time: 75.9})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/jump", bytes.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/jump = %d, want 200 (%s)", rec.Code, rec.Body)
	}

	var res jumpResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !res.OK || !res.Seeked {
		t.Errorf("jump response = %+v", res)
	}
	if len(driver.tabs) != 1 {
		t.Errorf("jump opened %d tabs, want 1", len(driver.tabs))
	}
}

func TestJumpMissingVideoID(t *testing.T) {
	d := newTestDeps(t, &fakeDriver{})
	r := newRouter(d)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/jump", bytes.NewReader([]byte(`{"time":5}`))))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /api/jump without videoId = %d, want 400", rec.Code)
	}
}

func TestJumpUnconfirmedSeekStillOK(t *testing.T) {
	driver := &fakeDriver{seekOK: false}
	d := newTestDeps(t, driver)
	r := newRouter(d)

	body, _ := json.Marshal(jumpRequest{VideoID: "abc123", Time: 10})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/jump", bytes.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/jump = %d, want 200", rec.Code)
	}

	var res jumpResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &res)
	if !res.OK || res.Seeked {
		t.Errorf("jump response = %+v, want ok without confirmed seek", res)
	}
}

func TestState(t *testing.T) {
	driver := &fakeDriver{
		tabs:        []tabs.Tab{{ID: 1, URL: "https://www.youtube.com/watch?v=abc123", Active: true}},
		stateOK:     true,
		currentTime: 3723.4,
		title:       "Cool Talk - YouTube",
	}
	d := newTestDeps(t, driver)
	r := newRouter(d)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/state = %d, want 200", rec.Code)
	}

	var res stateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.VideoID != "abc123" || res.Title != "Cool Talk" {
		t.Errorf("state = %+v", res)
	}
	if res.FormattedTime != "1:02:03" {
		t.Errorf("formattedTime = %q, want 1:02:03", res.FormattedTime)
	}
}

func TestBridgePullAndPush(t *testing.T) {
	d := newTestDeps(t, &fakeDriver{})
	r := newRouter(d)

	// Empty queue long-polls then returns an empty command array.
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bridge/pull", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /bridge/pull = %d, want 200", rec.Code)
	}
	var pull pullResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &pull); err != nil {
		t.Fatalf("decode pull response: %v", err)
	}
	if pull.Commands == nil {
		t.Error("pull must encode an empty array, not null")
	}

	// A result for an unknown command is acknowledged but not accepted.
	body, _ := json.Marshal(bridge.Result{ID: "stale", OK: true})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bridge/push", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /bridge/push = %d, want 200", rec.Code)
	}
	var push pushResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &push)
	if push.Accepted {
		t.Error("stale result should not be accepted")
	}
}

func TestHealthz(t *testing.T) {
	d := newTestDeps(t, &fakeDriver{})
	r := newRouter(d)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz = %d, want 200", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	d := newTestDeps(t, &fakeDriver{})
	r := newRouter(d)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /readyz = %d, want 200", rec.Code)
	}

	var res readyzResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !res.Ready || !res.Redis {
		t.Errorf("readyz = %+v with redis up", res)
	}
	if res.Extension {
		t.Errorf("readyz reports extension connected before any poll")
	}
}
