package auth

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/formdeck/formd/internal/logger"
	sm "github.com/formdeck/formd/internal/server/middleware"
)

// Handler serves token issuance. Every other endpoint sits behind the bearer
// middleware; login and refresh are the only public ones.
type Handler struct {
	Repo *UserRepo
	JWT  *JWT
}

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type loginInput struct {
	Body loginBody
}

type loginOutput struct {
	Body tokenResponse
}

func Register(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/v1/auth/login",
		Summary:     "Login",
		Tags:        []string{"Auth"},
	}, h.login)

	huma.Register(api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/v1/auth/refresh",
		Summary:     "Refresh token",
		Tags:        []string{"Auth"},
	}, h.refresh)
}

// issue signs a token for the user and wraps it in the response envelope.
func (h *Handler) issue(userID uint64) (*loginOutput, error) {
	tok, err := h.JWT.Generate(userID)
	if err != nil {
		return nil, err
	}
	return &loginOutput{Body: tokenResponse{
		AccessToken: tok,
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().Add(h.JWT.exp),
	}}, nil
}

func (h *Handler) login(ctx context.Context, in *loginInput) (*loginOutput, error) {
	if in.Body.Username == "" || in.Body.Password == "" {
		return nil, huma.Error401Unauthorized("invalid credentials")
	}
	u, err := h.Repo.GetByUsername(ctx, in.Body.Username)
	if err != nil || u == nil {
		logger.L.Warn("login rejected", "username", in.Body.Username)
		return nil, huma.Error401Unauthorized("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Body.Password)) != nil {
		logger.L.Warn("login rejected", "username", in.Body.Username)
		return nil, huma.Error401Unauthorized("invalid credentials")
	}
	return h.issue(u.ID)
}

type refreshInput struct{}

func (h *Handler) refresh(ctx context.Context, _ *refreshInput) (*loginOutput, error) {
	sub := sm.UserFromContext(ctx)
	uid, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || sub == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}
	return h.issue(uid)
}
