package httpapi

import (
	"net/url"

	"github.com/dmitrijs2005/clickstore/internal/server/models"
)

type registerRequest struct {
	Email flexString `json:"Email" validate:"required,max=100"`
	Senha flexString `json:"Senha" validate:"required"`
	CEP   flexString `json:"CEP" validate:"required"`
}

func (req *registerRequest) bindForm(v url.Values) error {
	setString(&req.Email, v, "Email")
	setString(&req.Senha, v, "Senha")
	setString(&req.CEP, v, "CEP")
	return nil
}

type loginRequest struct {
	Email flexString `json:"Email" validate:"required"`
	Senha flexString `json:"Senha" validate:"required"`
}

func (req *loginRequest) bindForm(v url.Values) error {
	setString(&req.Email, v, "Email")
	setString(&req.Senha, v, "Senha")
	return nil
}

type postalCodeRequest struct {
	CEP flexString `json:"CEP" validate:"required"`
}

func (req *postalCodeRequest) bindForm(v url.Values) error {
	setString(&req.CEP, v, "CEP")
	return nil
}

type cartRequest struct {
	Produto flexString `json:"Produto" validate:"required"`
	Valor   flexString `json:"Valor" validate:"required"`
	Onda    flexString `json:"Onda" validate:"required"`
}

func (req *cartRequest) bindForm(v url.Values) error {
	setString(&req.Produto, v, "Produto")
	setString(&req.Valor, v, "Valor")
	setString(&req.Onda, v, "Onda")
	return nil
}

type purchaseRequest struct {
	CompraID flexID `json:"compra_id" validate:"required,gt=0"`
}

func (req *purchaseRequest) bindForm(v url.Values) error {
	return setID(&req.CompraID, v, "compra_id")
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"Email"`
	Senha string `json:"Senha,omitempty"`
	CEP   string `json:"CEP"`
}

type cartItemResponse struct {
	ID      int64  `json:"id"`
	Produto string `json:"Produto"`
	Valor   string `json:"Valor"`
	Onda    string `json:"Onda"`
	Token   string `json:"Token"`
}

func newCartItemResponse(item models.CartItem) cartItemResponse {
	return cartItemResponse{
		ID:      item.ID,
		Produto: item.Product,
		Valor:   item.Amount,
		Onda:    item.Wave,
		Token:   item.OwnerToken,
	}
}
