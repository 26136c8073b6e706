package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"bstn/internal/config"
	"bstn/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
)

var (
	errMissingToken = errors.New("missing bearer token")
	errInvalidToken = errors.New("invalid token")
)

type ctxKey int

const actorKey ctxKey = iota

// Claims are the bearer token claims issued by the identity service. The
// user id is read from user_id, falling back to sub.
type Claims struct {
	UserID int64  `json:"user_id,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// WithActor stores the authenticated caller in ctx.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the caller set by HTTPAuth.
func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(models.Actor)
	return actor, ok
}

// HTTPAuth resolves the caller of an HTTP request and applies the per-client
// rate limit. With auth enabled the caller comes from an HS256 bearer token;
// otherwise the X-User-ID and X-User-Role headers set by a trusted gateway are
// used. Requests without credentials pass through anonymously and are
// rejected by the handlers that need an actor.
type HTTPAuth struct {
	cfg     *config.APIConfig
	limiter *rateLimiter
	logger  *zerolog.Logger
}

func NewHTTPAuth(cfg *config.APIConfig, logger *zerolog.Logger) *HTTPAuth {
	return &HTTPAuth{cfg: cfg, limiter: newRateLimiter(cfg), logger: logger}
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := a.authenticate(r)
		switch {
		case errors.Is(err, errMissingToken):
		case err != nil:
			a.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("authentication failed")
			writeError(w, http.StatusUnauthorized, errInvalidToken.Error())
			return
		default:
			r = r.WithContext(WithActor(r.Context(), actor))
		}

		if !a.limiter.allow(a.clientKey(r, actor, err == nil)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *HTTPAuth) authenticate(r *http.Request) (models.Actor, error) {
	if !a.cfg.Auth.Enabled {
		return actorFromHeaders(r)
	}

	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return models.Actor{}, errMissingToken
	}
	token, ok := strings.CutPrefix(raw, "Bearer ")
	if !ok {
		return models.Actor{}, errInvalidToken
	}
	return ParseToken(strings.TrimSpace(token), a.cfg.Auth.JWTSecret, a.cfg.Auth.JWTIssuer)
}

// ParseToken verifies an HS256 token and returns the actor it names.
func ParseToken(tokenString, secret, issuer string) (models.Actor, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return models.Actor{}, fmt.Errorf("%w: %v", errInvalidToken, err)
	}

	userID := claims.UserID
	if userID == 0 && claims.Subject != "" {
		userID, err = strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			return models.Actor{}, fmt.Errorf("%w: subject is not a user id", errInvalidToken)
		}
	}
	if userID <= 0 {
		return models.Actor{}, fmt.Errorf("%w: no user id", errInvalidToken)
	}
	role, err := normalizeRole(claims.Role)
	if err != nil {
		return models.Actor{}, err
	}
	return models.Actor{UserID: userID, Role: role}, nil
}

func actorFromHeaders(r *http.Request) (models.Actor, error) {
	raw := strings.TrimSpace(r.Header.Get(headerUserID))
	if raw == "" {
		return models.Actor{}, errMissingToken
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return models.Actor{}, fmt.Errorf("%w: bad %s", errInvalidToken, headerUserID)
	}
	role, err := normalizeRole(r.Header.Get(headerUserRole))
	if err != nil {
		return models.Actor{}, err
	}
	return models.Actor{UserID: userID, Role: role}, nil
}

func normalizeRole(role string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "", models.RoleGuest:
		return models.RoleGuest, nil
	case models.RoleProvider:
		return models.RoleProvider, nil
	case models.RoleAdmin:
		return models.RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", errInvalidToken, role)
	}
}

func (a *HTTPAuth) clientKey(r *http.Request, actor models.Actor, authenticated bool) string {
	if authenticated {
		return "user:" + strconv.FormatInt(actor.UserID, 10)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return clientKeyUnknown
}

// NewToken signs an HS256 token for a user. Used by tests and local tooling.
func NewToken(secret, issuer string, actor models.Actor) (string, error) {
	claims := Claims{
		UserID: actor.UserID,
		Role:   actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: strconv.FormatInt(actor.UserID, 10),
			Issuer:  issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
