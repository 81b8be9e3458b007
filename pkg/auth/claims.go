package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/servana-app/servana-backend/pkg/enums"
)

// AccessTokenClaims carry the caller identity minted by the upstream
// identity service. This API only parses and trusts them; it never issues
// tokens of its own.
type AccessTokenClaims struct {
	UserID   int64            `json:"user_id"`
	TenantID uuid.UUID        `json:"tenant_id"`
	Role     enums.MemberRole `json:"role"`
	jwt.RegisteredClaims
}

// AccessTokenPayload is the input for minting a token (used by tests and
// local tooling).
type AccessTokenPayload struct {
	UserID   int64
	TenantID uuid.UUID
	Role     enums.MemberRole
	JTI      string
}
