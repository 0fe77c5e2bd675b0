package httpapi

import (
	"database/sql"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/clickstore/internal/logging"
	"github.com/dmitrijs2005/clickstore/internal/server/receipt"
	"github.com/dmitrijs2005/clickstore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/clickstore/internal/server/services"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const (
	testSecret = "mysecret"
	testAPIKey = "test-api-key"
)

type testApp struct {
	server  *httptest.Server
	client  *http.Client
	rm      *repomanager.MemoryRepositoryManager
	db      *sql.DB
	metrics *Metrics
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// newTestApp wires the real services over in-memory repositories behind a
// live httptest server. mutate may adjust the router options.
func newTestApp(t *testing.T, mutate ...func(*Options)) *testApp {
	t.Helper()

	db := openTestDB(t)
	rm := repomanager.NewMemoryRepositoryManager()

	cart := services.NewCartService(db, rm, testSecret)
	o := Options{
		Users:    services.NewUserService(db, rm),
		Sessions: services.NewSessionService(db, rm, testSecret, time.Hour, 24*time.Hour),
		Cart:     cart,
		Receipts: services.NewReceiptService(cart, receipt.NewPDFRenderer(), nil, logging.Nop{}),
		DB:       db,
		Logger:   logging.Nop{},
		Metrics:  NewMetrics(),
		APIKey:   testAPIKey,
	}
	for _, fn := range mutate {
		fn(&o)
	}

	srv := httptest.NewServer(NewRouter(o))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testApp{
		server:  srv,
		client:  &http.Client{Jar: jar, CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }},
		rm:      rm,
		db:      db,
		metrics: o.Metrics,
	}
}

// do sends body with the given content type and returns status and body.
func (a *testApp) do(t *testing.T, method, path, contentType, body string, withKey bool) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequest(method, a.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if withKey {
		req.Header.Set("x-api-key", testAPIKey)
	}

	resp, err := a.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func (a *testApp) postJSON(t *testing.T, path, body string, withKey bool) (*http.Response, string) {
	t.Helper()
	return a.do(t, http.MethodPost, path, "application/json", body, withKey)
}

func (a *testApp) postForm(t *testing.T, path string, v url.Values, withKey bool) (*http.Response, string) {
	t.Helper()
	return a.do(t, http.MethodPost, path, "application/x-www-form-urlencoded", v.Encode(), withKey)
}

func (a *testApp) get(t *testing.T, path string, withKey bool) (*http.Response, string) {
	t.Helper()
	return a.do(t, http.MethodGet, path, "", "", withKey)
}

// registerAndLogin leaves the app's cookie jar holding a live session.
func (a *testApp) registerAndLogin(t *testing.T, email, password string) {
	t.Helper()

	resp, _ := a.postJSON(t, "/cadastro", `{"Email":"`+email+`","Senha":"`+password+`","CEP":"01001-000"}`, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = a.postJSON(t, "/login", `{"Email":"`+email+`","Senha":"`+password+`"}`, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
