package middlewares

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-ops/database"
	"github.com/yeremiapane/hotel-ops/models"
	"github.com/yeremiapane/hotel-ops/utils"
)

// Capability is the access level a request has proven. Routes declare the
// minimum they need with Gate.Require.
type Capability int

const (
	CapabilityNone Capability = iota
	// CapabilityViewer is granted by a valid view PIN. Read only.
	CapabilityViewer
	CapabilityStaff
	CapabilityAdmin
)

func (c Capability) String() string {
	switch c {
	case CapabilityViewer:
		return "viewer"
	case CapabilityStaff:
		return "staff"
	case CapabilityAdmin:
		return "admin"
	}
	return "none"
}

const (
	HeaderViewPIN = "X-View-Pin"

	ctxClaims     = "claims"
	ctxCapability = "capability"
)

type UserFinder interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Gate authenticates requests by bearer token or view PIN.
type Gate struct {
	tokens *utils.TokenManager
	pins   []string
	users  UserFinder
}

func NewGate(tokens *utils.TokenManager, pins []string, users UserFinder) *Gate {
	return &Gate{tokens: tokens, pins: pins, users: users}
}

// ValidPIN reports whether pin is one of the active view PINs. With no PIN
// configured every value is refused.
func (g *Gate) ValidPIN(pin string) bool {
	if pin == "" {
		return false
	}
	ok := 0
	for _, p := range g.pins {
		ok |= subtle.ConstantTimeCompare([]byte(pin), []byte(p))
	}
	return ok == 1
}

func (g *Gate) Require(min Capability) gin.HandlerFunc {
	switch min {
	case CapabilityViewer:
		return g.requireViewer
	case CapabilityAdmin:
		return g.requireAdmin
	default:
		return g.requireStaff
	}
}

// requireViewer accepts a bearer token, a view PIN, or both. Every
// credential supplied must be valid.
func (g *Gate) requireViewer(c *gin.Context) {
	pin := c.GetHeader(HeaderViewPIN)
	header := c.GetHeader("Authorization")
	if pin == "" && header == "" {
		abort(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	if pin != "" && !g.ValidPIN(pin) {
		abort(c, http.StatusUnauthorized, "Invalid PIN")
		return
	}

	if header != "" {
		claims, err := g.tokens.ParseToken(bearerToken(c))
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}
		setClaims(c, claims)
		c.Next()
		return
	}

	c.Set(ctxCapability, CapabilityViewer)
	c.Next()
}

func (g *Gate) requireStaff(c *gin.Context) {
	if !g.authenticate(c) {
		return
	}
	c.Next()
}

func (g *Gate) requireAdmin(c *gin.Context) {
	if !g.authenticate(c) {
		return
	}

	claims := CurrentClaims(c)
	user, err := g.users.GetUser(c.Request.Context(), claims.UserID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		abort(c, http.StatusNotFound, "User not found")
		return
	case err != nil:
		utils.RespondInternal(c, err)
		c.Abort()
		return
	}

	if user.Role != models.RoleAdmin {
		abort(c, http.StatusForbidden, "Admin access required")
		return
	}
	c.Set(ctxCapability, CapabilityAdmin)
	c.Next()
}

func (g *Gate) authenticate(c *gin.Context) bool {
	token := bearerToken(c)
	if token == "" && c.IsWebsocket() {
		token = c.Query("token")
	}
	if token == "" {
		abort(c, http.StatusUnauthorized, "No token provided")
		return false
	}

	claims, err := g.tokens.ParseToken(token)
	if err != nil {
		abort(c, http.StatusForbidden, "Invalid token")
		return false
	}
	setClaims(c, claims)
	return true
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func setClaims(c *gin.Context, claims *utils.Claims) {
	c.Set(ctxClaims, claims)
	if claims.Role == models.RoleAdmin {
		c.Set(ctxCapability, CapabilityAdmin)
	} else {
		c.Set(ctxCapability, CapabilityStaff)
	}
}

func abort(c *gin.Context, code int, message string) {
	utils.RespondError(c, code, errors.New(message))
	c.Abort()
}

// CurrentClaims returns the token claims of the request, or nil for PIN
// viewers.
func CurrentClaims(c *gin.Context) *utils.Claims {
	if v, ok := c.Get(ctxClaims); ok {
		if claims, ok := v.(*utils.Claims); ok {
			return claims
		}
	}
	return nil
}

func CurrentCapability(c *gin.Context) Capability {
	if v, ok := c.Get(ctxCapability); ok {
		if capability, ok := v.(Capability); ok {
			return capability
		}
	}
	return CapabilityNone
}
