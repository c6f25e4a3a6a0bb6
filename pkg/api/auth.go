package api

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"nodepanel/pkg/auth"
	"nodepanel/pkg/logger"
	"nodepanel/pkg/mailer"
	"nodepanel/pkg/model"
	"nodepanel/pkg/store"
)

type AuthHandler struct {
	Store  store.Store
	Mailer mailer.Sender
	Log    *logger.Logger
}

func (a *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/auth/register", a.handleRegister)
	mux.HandleFunc("/api/v1/auth/login", a.handleLogin)
	mux.HandleFunc("/api/v1/auth/verify", a.handleVerify)
}

func (a *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if _, exists, _ := a.Store.GetUserByEmail(req.Email); exists {
		http.Error(w, "email already registered", http.StatusConflict)
		return
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	user := model.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		VerifyCode:   verifyCode(),
	}
	user, err := a.Store.CreateUser(user)
	if err != nil {
		http.Error(w, "failed to create user", http.StatusInternalServerError)
		return
	}
	if err := a.Mailer.SendVerification(user.Email, user.VerifyCode); err != nil {
		a.Log.Warnw("verification mail failed", "email", user.Email, "err", err)
	}
	token, _ := auth.Generate(user.ID, user.Email, user.IsAdmin, 24*time.Hour)
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (a *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	user, ok, err := a.Store.GetUserByEmail(req.Email)
	if err != nil || !ok {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	token, _ := auth.Generate(user.ID, user.Email, user.IsAdmin, 24*time.Hour)
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (a *AuthHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Code == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	user, ok, err := a.Store.GetUserByEmail(req.Email)
	if err != nil || !ok {
		http.Error(w, "unknown account", http.StatusNotFound)
		return
	}
	if user.Verified {
		writeJSON(w, http.StatusOK, map[string]bool{"verified": true})
		return
	}
	if user.VerifyCode == "" || user.VerifyCode != req.Code {
		http.Error(w, "wrong code", http.StatusForbidden)
		return
	}
	user.Verified = true
	user.VerifyCode = ""
	if err := a.Store.SaveUser(user); err != nil {
		http.Error(w, "failed to update user", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"verified": true})
}

func verifyCode() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
