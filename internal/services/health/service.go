package health

import (
	"context"
	"database/sql"
	"time"
)

const pingTimeout = 2 * time.Second

// Status is the health payload.
type Status struct {
	OK  bool   `json:"ok"`
	DB  bool   `json:"db"`
	LLM string `json:"llm"`
}

// Service encapsulates health-related checks.
type Service struct {
	DB       *sql.DB
	Provider string
}

// NewService constructs a new health service. db may be nil when sessions are
// kept in memory.
func NewService(db *sql.DB, provider string) *Service {
	return &Service{DB: db, Provider: provider}
}

// Status reports liveness, database reachability and the completion provider.
// A database outage does not make the service unhealthy.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{OK: true, LLM: s.Provider}
	if s.DB == nil {
		return st
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	st.DB = s.DB.PingContext(ctx) == nil
	return st
}
