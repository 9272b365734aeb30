package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
)

type ContextKey string

var (
	SessionCtxKey           ContextKey = "session"
	CurrentTechnicianCtxKey ContextKey = "currentTechnician"
	TechnicianInfoCtxKey    ContextKey = "technicianInfo"
	JobCtxKey               ContextKey = "job"
)

func sessionFrom(r *http.Request) *domain.Session {
	return r.Context().Value(SessionCtxKey).(*domain.Session)
}
