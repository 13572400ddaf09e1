package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ourstory/scrapbook/internal/identity"
	"github.com/ourstory/scrapbook/internal/realtime"
	"github.com/ourstory/scrapbook/internal/scrapbook"
	"github.com/ourstory/scrapbook/internal/sessions"
	"github.com/ourstory/scrapbook/internal/storage"
	"github.com/ourstory/scrapbook/internal/store"
	"github.com/ourstory/scrapbook/pkg/middleware"
)

const blobBase = "http://localhost:9000/images"

type fixture struct {
	r     *gin.Engine
	app   *scrapbook.App
	sess  *sessions.Service
	blobs *storage.MemoryBlobs
}

func init() { gin.SetMode(gin.TestMode) }

func testDirectory(t *testing.T) *identity.Directory {
	t.Helper()
	dir, err := identity.NewDirectory(
		identity.Account{Role: identity.User1, Username: "me", Password: "love123", Name: "Me"},
		identity.Account{Role: identity.User2, Username: "boyfriend", Password: "love123", Name: "Boyfriend"},
	)
	require.NoError(t, err)
	return dir
}

func newFixtureWith(t *testing.T, tables store.Tables) *fixture {
	t.Helper()
	dir := testDirectory(t)
	blobs := storage.NewMemoryBlobs(blobBase)
	app := scrapbook.New(tables, blobs, realtime.NewMemoryBroker(), dir)
	sess := sessions.NewService(sessions.NewMemoryRepository(), dir, "handler-test-secret")

	r := gin.New()
	r.Use(middleware.CORS())
	RegisterAPI(r, app, sess)
	return &fixture{r: r, app: app, sess: sess, blobs: blobs}
}

// newFixture uses a clock that advances one second per insert so that
// newest-first order is deterministic.
func newFixture(t *testing.T) *fixture {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var tick atomic.Int64
	clock := func() time.Time { return start.Add(time.Duration(tick.Add(1)) * time.Second) }
	return newFixtureWith(t, store.NewMemory(store.WithClock(clock)))
}

// login returns a bearer token for username.
func (f *fixture) login(t *testing.T, username string) string {
	t.Helper()
	token, _, err := f.sess.Login(context.Background(), username, "love123")
	require.NoError(t, err)
	return token
}

func (f *fixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.r.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// downTables fails every call.
type downTables struct{}

var errDown = errors.New("connection refused")

func (downTables) Select(context.Context, string, store.Query) ([]store.Record, error) {
	return nil, errDown
}
func (downTables) Insert(context.Context, string, store.Record) (store.Record, error) {
	return nil, errDown
}
func (downTables) Update(context.Context, string, store.Filter, store.Record) (int64, error) {
	return 0, errDown
}
func (downTables) Delete(context.Context, string, store.Filter) error { return errDown }

