package api

import (
	"net/http"

	"github.com/fishgalaxy/backend/internal/domain"
)

type signupRequest struct {
	Name     string `json:"name"`
	ShopName string `json:"shopName"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Pincode  int64  `json:"pincode"`
	Address  string `json:"address"`
}

type authResponse struct {
	Customer customerView `json:"customer"`
	Token    string       `json:"token"`
}

// Signup регистрирует покупателя и сразу выдаёт токен в cookie.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	created, token, err := h.auth.Signup(domain.Customer{
		Name:     req.Name,
		ShopName: req.ShopName,
		Email:    req.Email,
		Mobile:   req.Mobile,
		Pincode:  req.Pincode,
		Address:  req.Address,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	setTokenCookie(w, token)
	writeJSON(w, http.StatusCreated, authResponse{Customer: toCustomerView(created), Token: token})
}

type otpRequest struct {
	Mobile string `json:"mobile"`
	Code   string `json:"code"`
}

// SendOTP выдаёт одноразовый код на зарегистрированный номер.
func (h *Handler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := h.auth.SendOTP(req.Mobile); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "otp sent"})
}

// ResendOTP повторно выдаёт код, гася предыдущий.
func (h *Handler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := h.auth.ResendOTP(req.Mobile); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "otp sent"})
}

// ValidateOTP сверяет код и при успехе выдаёт токен в cookie.
func (h *Handler) ValidateOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	validated, token, err := h.auth.ValidateOTP(req.Mobile, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}

	setTokenCookie(w, token)
	writeJSON(w, http.StatusOK, authResponse{Customer: toCustomerView(validated), Token: token})
}
