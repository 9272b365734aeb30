package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const tokenCookieName = "__workshop_labour_token"

type AuthClaims struct {
	Role string `json:"role"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// issueToken 签发 JWT 并通过 http-only 的 cookie 返回给客户端
func (h *Handler) issueToken(w http.ResponseWriter, role domain.Role, subject int64, name string) error {
	now := h.now()
	expiration := now.Add(time.Duration(h.config.JWT.Expiration) * time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: string(role),
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(subject, 10),
		},
	})
	ss, err := token.SignedString([]byte(h.config.JWT.Secret))
	if err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     tokenCookieName,
		Value:    ss,
		Expires:  expiration,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
	}

	if h.config.Environment == "production" {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteStrictMode
	}

	http.SetCookie(w, cookie)
	return nil
}

func (h *Handler) TechnicianLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name" validate:"required"`
		EmployeeID string `json:"employeeID" validate:"required"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	tech, err := h.repository.GetTechnicianByEmployeeID(strings.TrimSpace(req.EmployeeID))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "invalid name or employee ID")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 姓名不区分大小写
	if !strings.EqualFold(strings.TrimSpace(req.Name), tech.Name) {
		h.errorResponse(w, r, "invalid name or employee ID")
		return
	}

	if !tech.IsActive() {
		h.errorResponse(w, r, "technician is inactive")
		return
	}

	if err := h.issueToken(w, domain.RoleTechnician, tech.ID, tech.Name); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "login successful", tech)
}

func (h *Handler) SupervisorLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		Code     string `json:"code" validate:"required"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	supervisor, err := h.repository.GetSupervisorByUsername(req.Username)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "invalid username or code")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(supervisor.CodeHash), []byte(req.Code)); err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			h.errorResponse(w, r, "invalid username or code")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.issueToken(w, domain.RoleSupervisor, supervisor.ID, supervisor.FullName); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "login successful", supervisor)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)

	// 把 token 记录到 redis 中，直到它自然过期
	if ttl := session.ExpiresAt.Sub(h.now()); ttl > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
		defer cancel()

		if err := h.redisClient.Set(ctx, revokedTokenKey(session.TokenID), 1, ttl).Err(); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:    tokenCookieName,
		Value:   "",
		Expires: time.Now().Add(-time.Hour),
		Path:    "/",
	})

	h.successResponse(w, r, "logout successful", nil)
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)

	var profile any
	var err error
	switch session.Role {
	case domain.RoleSupervisor:
		profile, err = h.repository.GetSupervisorByID(session.Subject)
	case domain.RoleTechnician:
		profile, err = h.repository.GetTechnicianByID(session.Subject)
	default:
		h.errorResponse(w, r, "invalid token")
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "account no longer exists")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "session retrieved", map[string]any{
		"session": session,
		"profile": profile,
	})
}
