package domain

import "time"

type Supervisor struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CodeHash  string    `json:"-"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
}
