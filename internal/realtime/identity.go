package realtime

import (
	"net/http"
	"strconv"

	"github.com/anonto42/nano-comments/backend/internal/middleware"
)

// JWTIdentity resolves the handshake identity from a signed token in the "token" query
// parameter. When allowUserID is set, a bare "userId" query parameter is trusted as a fallback.
func JWTIdentity(secret string, allowUserID bool) IdentityResolver {
	return func(r *http.Request) uint {
		if token := r.URL.Query().Get("token"); token != "" {
			if claims, err := middleware.ParseToken(token, secret); err == nil {
				return claims.UserID
			}
			return 0
		}
		if allowUserID {
			return queryUserID(r)
		}
		return 0
	}
}

// FirebaseIdentity resolves the handshake identity from a Firebase ID token in the "token" query
// parameter, falling back to "userId" like JWTIdentity.
func FirebaseIdentity(verifier middleware.IDTokenVerifier, users middleware.FirebaseUserResolver, allowUserID bool) IdentityResolver {
	return func(r *http.Request) uint {
		if token := r.URL.Query().Get("token"); token != "" {
			t, err := verifier.VerifyIDToken(r.Context(), token)
			if err != nil {
				return 0
			}
			user, err := users.GetUserByFirebaseUID(r.Context(), t.UID)
			if err != nil {
				return 0
			}
			return user.ID
		}
		if allowUserID {
			return queryUserID(r)
		}
		return 0
	}
}

func queryUserID(r *http.Request) uint {
	id, err := strconv.ParseUint(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
