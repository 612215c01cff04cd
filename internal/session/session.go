// Package session keeps track of which user, if any, a browser session belongs to.
//
// The session is a signed HS256 token in an HttpOnly cookie. A session is either
// anonymous (no valid cookie) or authenticated; Login and Logout are the only
// transitions.
package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"postboard/internal/config"
	"postboard/internal/service"
	"postboard/internal/util"
)

// Principal is the authenticated user attached to a session.
type Principal struct {
	UserID   int64
	Username string
}

func (p Principal) ID() int64 {
	return p.UserID
}

func (p Principal) DisplayName() string {
	return p.Username
}

type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type Gate struct {
	cfg   config.Session
	clock util.Clock
}

func NewGate(cfg config.Session, clock util.Clock) *Gate {
	return &Gate{cfg: cfg, clock: clock}
}

// Login marks the session as authenticated. With remember set the cookie outlives
// the browser session and the token lasts RememberDuration instead of Duration.
func (g *Gate) Login(w http.ResponseWriter, p Principal, remember bool) error {
	lifetime := g.cfg.Duration
	if remember {
		lifetime = g.cfg.RememberDuration
	}

	now := g.clock.NowUtc()
	expires := now.Add(lifetime)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: p.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(p.UserID, 10),
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})

	tokenString, err := token.SignedString([]byte(g.cfg.SecretKey))
	if err != nil {
		return fmt.Errorf("ошибка подписи токена: %w", err)
	}

	cookie := &http.Cookie{
		Name:     g.cfg.CookieName,
		Value:    tokenString,
		Path:     "/",
		HttpOnly: true,
		Secure:   g.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.Expires = expires
		cookie.MaxAge = int(lifetime.Seconds())
	}

	http.SetCookie(w, cookie)
	return nil
}

func (g *Gate) Logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     g.cfg.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   g.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

// Current returns the session's principal, or service.ErrUnauthenticated when the
// request carries no valid, unexpired token.
func (g *Gate) Current(r *http.Request) (Principal, error) {
	cookie, err := r.Cookie(g.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return Principal{}, service.ErrUnauthenticated
	}

	var c claims
	token, err := jwt.ParseWithClaims(cookie.Value, &c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return []byte(g.cfg.SecretKey), nil
	}, jwt.WithTimeFunc(g.clock.NowUtc), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Principal{}, service.ErrUnauthenticated
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Principal{}, service.ErrUnauthenticated
	}

	return Principal{UserID: userID, Username: c.Username}, nil
}

// RequireAuthenticated is the check every gated handler runs before doing any work.
// A principal already placed in the request context by the middleware wins.
func (g *Gate) RequireAuthenticated(r *http.Request) (Principal, error) {
	if p, ok := PrincipalFrom(r.Context()); ok {
		return p, nil
	}
	return g.Current(r)
}

type contextKey string

const principalKey = contextKey("principal")

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

func (g *Gate) flashCookieName() string {
	return g.cfg.CookieName + "_flash"
}

// SetFlash stores a one-shot message shown on the next rendered page.
func (g *Gate) SetFlash(w http.ResponseWriter, category, message string) {
	payload, err := json.Marshal(Flash{Category: category, Message: message})
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     g.flashCookieName(),
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash reads and clears the pending message, if any.
func (g *Gate) PopFlash(w http.ResponseWriter, r *http.Request) (Flash, bool) {
	cookie, err := r.Cookie(g.flashCookieName())
	if err != nil {
		return Flash{}, false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     g.flashCookieName(),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	payload, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return Flash{}, false
	}

	var f Flash
	if err := json.Unmarshal(payload, &f); err != nil || f.Message == "" {
		return Flash{}, false
	}

	return f, true
}
