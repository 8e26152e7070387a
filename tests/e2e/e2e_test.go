package e2e

import (
	"context"
	"net/http"
	"testing"
	"time"

	"goshortlink/cache/inmemory"
	"goshortlink/codec"
	"goshortlink/maintenance"
	"goshortlink/repository"
	"goshortlink/server"
	"goshortlink/shortener"

	"github.com/gavv/httpexpect/v2"
	"github.com/gin-gonic/gin"
	"github.com/rShetty/asyncwait"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newEngine wires the whole service against in-process bindings, so the
// suite exercises the real pipelines without external backends.
func newEngine() (*gin.Engine, repository.Repository) {
	gin.SetMode(gin.TestMode)
	db := repository.NewMemRepo()
	cache := inmemory.New(time.Hour, time.Hour)
	log := zap.NewNop()
	svc := shortener.New(db, cache, log, "http://localhost:8080", time.Hour)
	jobs := maintenance.NewJobs(db, cache, log, time.Hour)
	return server.NewRouter(db, cache, svc, jobs, log, 100), db
}

func newExpect(t *testing.T, engine *gin.Engine) *httpexpect.Expect {
	return httpexpect.WithConfig(httpexpect.Config{
		Client: &http.Client{
			Transport: httpexpect.NewBinder(engine),
			Jar:       httpexpect.NewJar(),
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		Reporter: httpexpect.NewAssertReporter(t),
	})
}

func seedExpired(t *testing.T, db repository.Repository, url string) string {
	past := time.Now().Add(-time.Hour)
	id, err := db.Insert(context.Background(), url, &past)
	require.NoError(t, err)
	code := codec.Encode(id)
	require.NoError(t, db.UpdateCode(context.Background(), id, code))
	return code
}

func Test_Server_Health(t *testing.T) {
	engine, _ := newEngine()
	e := newExpect(t, engine)

	e.GET("/health").
		Expect().
		Status(http.StatusOK).JSON().Object().ValueEqual("status", "ok")
}

func Test_Shorten_Redirect_Stats(t *testing.T) {
	engine, db := newEngine()
	e := newExpect(t, engine)

	created := e.POST("/shorten").
		WithJSON(map[string]interface{}{"url": "https://example.com/a"}).
		Expect().
		Status(http.StatusCreated).JSON().Object()
	created.ValueEqual("original_url", "https://example.com/a")
	created.ValueEqual("is_new", true)
	code := created.Value("short_code").String().Raw()

	e.GET("/" + code).
		Expect().
		Status(http.StatusFound).
		Header("Location").Equal("https://example.com/a")

	// click accounting is fire-and-forget; give it a moment to land
	counted := asyncwait.NewAsyncWait(2000, 10).Check(func() bool {
		record, err := db.FindByCode(context.Background(), code)
		return err == nil && record.ClickCount >= 1
	})
	require.True(t, counted)

	stats := e.GET("/stats/" + code).
		Expect().
		Status(http.StatusOK).JSON().Object()
	stats.ValueEqual("short_code", code)
	stats.ValueEqual("original_url", "https://example.com/a")
	stats.Value("click_count").Number().Ge(1)
}

func Test_Shorten_same_url_twice_returns_existing_code(t *testing.T) {
	engine, _ := newEngine()
	e := newExpect(t, engine)

	first := e.POST("/shorten").
		WithJSON(map[string]interface{}{"url": "https://example.com/a"}).
		Expect().
		Status(http.StatusCreated).JSON().Object()
	code := first.Value("short_code").String().Raw()

	second := e.POST("/shorten").
		WithJSON(map[string]interface{}{"url": "https://example.com/a"}).
		Expect().
		Status(http.StatusCreated).JSON().Object()
	second.ValueEqual("is_new", false)
	second.ValueEqual("short_code", code)
}

func Test_Shorten_rejects_bad_payloads(t *testing.T) {
	engine, _ := newEngine()
	e := newExpect(t, engine)

	e.POST("/shorten").
		WithJSON(map[string]interface{}{"url": "not a url"}).
		Expect().
		Status(http.StatusBadRequest)

	e.POST("/shorten").
		WithJSON(map[string]interface{}{
			"url":        "https://example.com/a",
			"expires_at": time.Now().Add(-time.Hour).Format(time.RFC3339),
		}).
		Expect().
		Status(http.StatusBadRequest)
}

func Test_Redirect_expired_code_is_gone(t *testing.T) {
	engine, db := newEngine()
	e := newExpect(t, engine)

	code := seedExpired(t, db, "https://example.com/old")

	e.GET("/" + code).
		Expect().
		Status(http.StatusNotFound)
	e.GET("/stats/" + code).
		Expect().
		Status(http.StatusNotFound)
}

func Test_Redirect_invalid_code_is_a_bad_request(t *testing.T) {
	engine, _ := newEngine()
	e := newExpect(t, engine)

	e.GET("/bad!code").
		Expect().
		Status(http.StatusBadRequest)
}

func Test_Admin_cleanup_is_idempotent(t *testing.T) {
	engine, db := newEngine()
	e := newExpect(t, engine)

	seedExpired(t, db, "https://example.com/old")

	e.POST("/admin/cleanup").
		Expect().
		Status(http.StatusOK).JSON().Object().ValueEqual("deleted_count", 1)

	e.POST("/admin/cleanup").
		Expect().
		Status(http.StatusOK).JSON().Object().ValueEqual("deleted_count", 0)
}

func Test_Admin_preload_cache(t *testing.T) {
	engine, _ := newEngine()
	e := newExpect(t, engine)

	for _, url := range []string{"https://example.com/a", "https://example.com/b"} {
		e.POST("/shorten").
			WithJSON(map[string]interface{}{"url": url}).
			Expect().
			Status(http.StatusCreated)
	}

	e.POST("/admin/preload-cache").
		WithJSON(map[string]interface{}{"limit": 10}).
		Expect().
		Status(http.StatusOK).JSON().Object().ValueEqual("loaded_count", 2)
}
