package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/clickstore/internal/common"
	"github.com/dmitrijs2005/clickstore/internal/logging"
	"github.com/dmitrijs2005/clickstore/internal/server/models"
	"github.com/dmitrijs2005/clickstore/internal/server/services"
)

type UserService interface {
	Register(ctx context.Context, email, password, postalCode string) (*models.User, error)
	UpdatePostalCode(ctx context.Context, id int64, postalCode string) error
	Delete(ctx context.Context, id int64) error
}

type SessionService interface {
	SessionResolver
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Logout(ctx context.Context, token string) error
	IsAuthenticated(ctx context.Context, token string) bool
}

type CartService interface {
	AddItem(ctx context.Context, userID int64, product, amount, wave string) (*models.CartItem, error)
	ListByOwner(ctx context.Context, userID int64) ([]models.CartItem, error)
	DeleteByID(ctx context.Context, userID, itemID int64) error
}

type ReceiptService interface {
	Export(ctx context.Context, userID, itemID int64) (*services.ExportedReceipt, error)
}

// Pinger reports database liveness for /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type handlers struct {
	users        UserService
	sessions     SessionService
	cart         CartService
	receipts     ReceiptService
	db           Pinger
	logger       logging.Logger
	metrics      *Metrics
	cookieSecure bool
}

// fail logs err with the request's logger and answers status/msg. The cause
// stays server-side.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error, status int, msg string) {
	l := logging.FromContext(r.Context(), h.logger)
	if errors.Is(err, common.ErrorInternal) {
		l.Error(r.Context(), msg, "error", err)
	} else {
		l.Debug(r.Context(), msg, "error", err)
	}
	writeMessage(w, status, msg)
}

func (h *handlers) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// currentUser is only called behind RequireSession.
func currentUser(r *http.Request) int64 {
	id, _ := UserIDFromContext(r.Context())
	return id
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := bind(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	user, err := h.users.Register(r.Context(), string(req.Email), string(req.Senha), string(req.CEP))
	switch {
	case errors.Is(err, common.ErrorDuplicateEmail):
		h.fail(w, r, err, http.StatusConflict, "Email já cadastrado. Digite um email diferente.")
		return
	case err != nil:
		h.fail(w, r, err, http.StatusBadRequest, "Não foi possível salvar novo usuário :/")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		ID:    user.ID,
		Email: user.Email,
		Senha: common.RedactedPassword,
		CEP:   user.PostalCode,
	})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := bind(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	res, err := h.sessions.Login(r.Context(), string(req.Email), string(req.Senha))
	switch {
	case errors.Is(err, common.ErrorInvalidCredentials):
		h.metrics.recordLogin("invalid")
		h.fail(w, r, err, http.StatusUnauthorized, "Senha incorreta. Tente novamente.")
		return
	case err != nil:
		h.metrics.recordLogin("error")
		h.fail(w, r, err, http.StatusBadRequest, "Erro durante o login :/")
		return
	}
	h.metrics.recordLogin("success")

	h.setSessionCookie(w, res.Token, res.ExpiresAt)
	writeJSON(w, http.StatusOK, userResponse{
		ID:    res.User.ID,
		Email: res.User.Email,
		CEP:   res.User.PostalCode,
	})
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context(), sessionToken(r)); err != nil {
		logging.FromContext(r.Context(), h.logger).Error(r.Context(), "logout failed", "error", err)
	}
	h.clearSessionCookie(w)
	writeMessage(w, http.StatusOK, "Logout realizado com sucesso.")
}

func (h *handlers) checkLogin(w http.ResponseWriter, r *http.Request) {
	if h.sessions.IsAuthenticated(r.Context(), sessionToken(r)) {
		writeMessage(w, http.StatusOK, "Usuário está logado.")
		return
	}
	writeMessage(w, http.StatusUnauthorized, "Usuário não está logado.")
}

func (h *handlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	err := h.users.Delete(r.Context(), currentUser(r))
	switch {
	case errors.Is(err, common.ErrorNotFound):
		h.fail(w, r, err, http.StatusNotFound, "Usuário não encontrado.")
		return
	case err != nil:
		h.fail(w, r, err, http.StatusBadRequest, "Erro ao deletar usuário :/")
		return
	}

	h.clearSessionCookie(w)
	writeMessage(w, http.StatusOK, "Usuário deletado com sucesso.")
}

func (h *handlers) updatePostalCode(w http.ResponseWriter, r *http.Request) {
	var req postalCodeRequest
	if err := bind(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	err := h.users.UpdatePostalCode(r.Context(), currentUser(r), string(req.CEP))
	switch {
	case errors.Is(err, common.ErrorNotFound):
		h.fail(w, r, err, http.StatusNotFound, "Usuário não encontrado.")
		return
	case err != nil:
		h.fail(w, r, err, http.StatusBadRequest, "Não foi possível atualizar o CEP.")
		return
	}

	writeMessage(w, http.StatusOK, "CEP atualizado com sucesso.")
}

func (h *handlers) addToCart(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if err := bind(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	item, err := h.cart.AddItem(r.Context(), currentUser(r), string(req.Produto), string(req.Valor), string(req.Onda))
	switch {
	case errors.Is(err, common.ErrorNotFound):
		h.fail(w, r, err, http.StatusNotFound, "Usuário não encontrado.")
		return
	case err != nil:
		h.fail(w, r, err, http.StatusBadRequest, "Não foi possível adicionar o item ao carrinho :/")
		return
	}
	h.metrics.recordCartAdd()

	writeJSON(w, http.StatusOK, newCartItemResponse(*item))
}

func (h *handlers) listPurchases(w http.ResponseWriter, r *http.Request) {
	items, err := h.cart.ListByOwner(r.Context(), currentUser(r))
	if err != nil {
		h.fail(w, r, err, http.StatusBadRequest, "Erro ao buscar compras :/")
		return
	}

	out := make([]cartItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, newCartItemResponse(item))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) deletePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := bind(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	err := h.cart.DeleteByID(r.Context(), currentUser(r), int64(req.CompraID))
	switch {
	case errors.Is(err, common.ErrorNotFound):
		h.fail(w, r, err, http.StatusNotFound, "Compra não encontrada.")
		return
	case err != nil:
		h.fail(w, r, err, http.StatusBadRequest, "Erro ao deletar compra :/")
		return
	}

	writeMessage(w, http.StatusOK, "Compra deletada com sucesso.")
}

func (h *handlers) exportReceipt(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := bind(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	doc, err := h.receipts.Export(r.Context(), currentUser(r), int64(req.CompraID))
	switch {
	case errors.Is(err, common.ErrorNotFound):
		h.fail(w, r, err, http.StatusNotFound, "Compra não encontrada.")
		return
	case err != nil:
		h.fail(w, r, err, http.StatusBadRequest, "Erro ao gerar PDF :/")
		return
	}
	h.metrics.recordReceipt(doc.ArchiveKey != "")

	hdr := w.Header()
	hdr.Set("Content-Type", "application/pdf")
	hdr.Set("Content-Disposition", "attachment; filename="+doc.Filename)
	hdr.Set("Content-Length", strconv.Itoa(len(doc.Data)))
	if doc.ArchiveKey != "" {
		hdr.Set(common.ReceiptKeyHeaderName, doc.ArchiveKey)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Data)
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			logging.FromContext(ctx, h.logger).Error(ctx, "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
