package domain

import "time"

type Role string

const (
	RoleTechnician Role = "technician"
	RoleSupervisor Role = "supervisor"
)

// Session 是经过认证的请求主体，由中间件从 JWT 中解析后放入 context
type Session struct {
	Role      Role      `json:"role"`
	Subject   int64     `json:"subject"`
	TokenID   string    `json:"-"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) IsSupervisor() bool {
	return s.Role == RoleSupervisor
}
