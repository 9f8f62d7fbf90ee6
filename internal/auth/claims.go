package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Agent roles. Commands require an agent or supervisor; read-only snapshot
// access is open to any authenticated role.
const (
	RoleAgent      = "agent"
	RoleSupervisor = "supervisor"
	RoleObserver   = "observer"
)

// Claims are the only supported JWT claims shape for this service.
// AgentID identifies the human at the console; Extension is the telephony
// endpoint their toolkit registers under.
type Claims struct {
	jwt.RegisteredClaims

	AgentID   string    `json:"agent_id"`
	Extension string    `json:"extension"`
	Role      string    `json:"role"`
	TokenType TokenType `json:"token_type"`
}
