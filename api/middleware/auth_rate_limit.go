package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/storefrontlab/storefront-backend/api/responses"
	pkgerrors "github.com/storefrontlab/storefront-backend/pkg/errors"
	"github.com/storefrontlab/storefront-backend/pkg/logger"
)

// FixedWindowLimiter is the slice of pkg/redis the throttle needs. The
// limiter owns key construction, so throttle scopes land in the same
// namespaced keyspace as the session entries.
type FixedWindowLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// ThrottlePolicy caps attempts against one auth surface per fixed window.
// A limit of zero disables that dimension; a zero window disables the
// whole policy.
type ThrottlePolicy struct {
	Surface    string
	Window     time.Duration
	PerIP      int
	PerAccount int
}

func (p ThrottlePolicy) active() bool {
	return p.Window > 0 && (p.PerIP > 0 || p.PerAccount > 0)
}

func (p ThrottlePolicy) surface() string {
	s := strings.ToLower(strings.TrimSpace(p.Surface))
	if s == "" {
		return "auth"
	}
	return s
}

// scope yields e.g. "login:ip:203.0.113.9" or "login:account:<digest>".
// The limiter prefixes it into the shared keyspace.
func (p ThrottlePolicy) scope(dimension, subject string) string {
	return p.surface() + ":" + dimension + ":" + subject
}

// Throttle counts attempts per caller address and per targeted account on
// an auth surface, rejecting requests past either cap. Account counting
// peeks at the JSON body for the email field and restores the body for the
// handler; only a digest of the address is used in keys.
func Throttle(policy ThrottlePolicy, limiter FixedWindowLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.active() || limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if policy.PerIP > 0 {
				if addr := callerAddr(r); addr != "" {
					ok, hits, err := limiter.FixedWindowAllow(ctx, policy.scope("ip", addr), int64(policy.PerIP), policy.Window)
					if err != nil {
						responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "throttle counter"))
						return
					}
					if !ok {
						throttled(ctx, logg, w, policy, "ip", hits, policy.PerIP)
						return
					}
				}
			}

			if policy.PerAccount > 0 {
				account, err := peekAccount(r)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
					return
				}
				if account != "" {
					ok, hits, err := limiter.FixedWindowAllow(ctx, policy.scope("account", account), int64(policy.PerAccount), policy.Window)
					if err != nil {
						responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "throttle counter"))
						return
					}
					if !ok {
						throttled(ctx, logg, w, policy, "account", hits, policy.PerAccount)
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func throttled(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy ThrottlePolicy, dimension string, hits int64, limit int) {
	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{
			"surface":   policy.surface(),
			"dimension": dimension,
			"hits":      hits,
			"cap":       limit,
			"window":    policy.Window.String(),
		})
		logg.Warn(logCtx, "auth.throttled")
	}
	responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts"))
}

// peekAccount reads the body to learn which account the attempt targets,
// then puts the body back. The email itself never becomes key material,
// only its hex digest.
func peekAccount(r *http.Request) (string, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	var payload struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(raw, &payload) != nil {
		return "", nil
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" {
		return "", nil
	}
	digest := sha256.Sum256([]byte(email))
	return hex.EncodeToString(digest[:]), nil
}

// callerAddr trusts proxy headers first, then falls back to the socket peer.
func callerAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if addr := strings.TrimSpace(first); addr != "" {
			return addr
		}
	}
	if addr := strings.TrimSpace(r.Header.Get("X-Real-IP")); addr != "" {
		return addr
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
