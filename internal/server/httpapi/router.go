package httpapi

import (
	"database/sql"
	"net/http"

	"github.com/dmitrijs2005/clickstore/internal/dbx"
	"github.com/dmitrijs2005/clickstore/internal/logging"
	"github.com/gorilla/mux"
)

// Options carries everything NewRouter wires together. DB, Limiter and
// Metrics are optional.
type Options struct {
	Users    UserService
	Sessions SessionService
	Cart     CartService
	Receipts ReceiptService

	// DB, when set, backs /healthz and the per-request connection scope.
	DB *sql.DB

	Logger       logging.Logger
	Metrics      *Metrics
	Limiter      *RateLimiter
	APIKey       string
	CookieSecure bool
	CORSOrigins  []string
}

// NewRouter builds the full handler tree.
func NewRouter(o Options) http.Handler {
	if o.Logger == nil {
		o.Logger = logging.Nop{}
	}
	if o.Metrics == nil {
		o.Metrics = NewMetrics()
	}

	h := &handlers{
		users:        o.Users,
		sessions:     o.Sessions,
		cart:         o.Cart,
		receipts:     o.Receipts,
		logger:       o.Logger,
		metrics:      o.Metrics,
		cookieSecure: o.CookieSecure,
	}
	if o.DB != nil {
		h.db = o.DB
	}

	r := mux.NewRouter()
	r.Use(o.Metrics.Instrument)

	r.Handle("/", http.RedirectHandler("/openapi", http.StatusFound)).Methods(http.MethodGet)
	r.HandleFunc("/openapi", serveOpenAPI).Methods(http.MethodGet)
	r.Handle("/metrics", o.Metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)

	scope := Middleware(func(next http.Handler) http.Handler { return next })
	if o.DB != nil {
		scope = dbx.ScopeConn(o.DB, func(w http.ResponseWriter, r *http.Request, err error) {
			logging.FromContext(r.Context(), o.Logger).Error(r.Context(), "acquiring connection", "error", err)
			writeMessage(w, http.StatusServiceUnavailable, "service unavailable")
		})
	}

	throttle := Middleware(func(next http.Handler) http.Handler { return next })
	if o.Limiter != nil {
		o.Limiter.onReject = o.Metrics.recordThrottled
		throttle = o.Limiter.Handler
	}

	// throttled requests are rejected before a connection is borrowed
	limited := Chain(throttle, scope)
	protected := Chain(
		scope,
		RequireSession(o.Sessions, o.Logger),
		RequireAPIKey(o.APIKey),
		SlideSession(o.Sessions, o.Logger),
	)

	r.Handle("/cadastro", limited(http.HandlerFunc(h.register))).Methods(http.MethodPost)
	r.Handle("/login", limited(http.HandlerFunc(h.login))).Methods(http.MethodPost)
	r.Handle("/logout", scope(http.HandlerFunc(h.logout))).Methods(http.MethodGet)
	r.Handle("/check_login", scope(http.HandlerFunc(h.checkLogin))).Methods(http.MethodGet)

	r.Handle("/deletar_usuario", protected(http.HandlerFunc(h.deleteUser))).Methods(http.MethodDelete)
	r.Handle("/atualizar_cep", protected(http.HandlerFunc(h.updatePostalCode))).Methods(http.MethodPut)
	r.Handle("/carrinho", protected(http.HandlerFunc(h.addToCart))).Methods(http.MethodPost)
	r.Handle("/ver_compras", protected(http.HandlerFunc(h.listPurchases))).Methods(http.MethodGet)
	r.Handle("/deletar_compra", protected(http.HandlerFunc(h.deletePurchase))).Methods(http.MethodDelete)
	r.Handle("/gerar_pdf", protected(http.HandlerFunc(h.exportReceipt))).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return Chain(
		RequestLogger(o.Logger),
		Recover(o.Logger),
		CORS(o.CORSOrigins),
	)(r)
}
