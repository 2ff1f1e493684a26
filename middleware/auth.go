package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"payment-tracker-api/apperr"
	"payment-tracker-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	principalKey = "principal"
	claimsKey    = "claims"
)

// TokenType distinguishes short-lived access tokens from refresh tokens.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

type Claims struct {
	UserID    uint            `json:"user_id"`
	Username  string          `json:"username"`
	UserType  models.UserType `json:"user_type"`
	TokenType TokenType       `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is returned on login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenIssuer signs and verifies HS256 tokens.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// GenerateToken creates a signed JWT of the given type for a user
func (ti *TokenIssuer) GenerateToken(user *models.User, typ TokenType) (string, error) {
	ttl := ti.accessTTL
	if typ == RefreshToken {
		ttl = ti.refreshTTL
	}
	now := ti.now()
	claims := Claims{
		UserID:    user.ID,
		Username:  user.Username,
		UserType:  user.UserType,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ti.secret)
}

// GeneratePair issues an access and a refresh token.
func (ti *TokenIssuer) GeneratePair(user *models.User) (TokenPair, error) {
	access, err := ti.GenerateToken(user, AccessToken)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := ti.GenerateToken(user, RefreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Parse verifies the signature, expiry and token type.
func (ti *TokenIssuer) Parse(tokenStr string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return ti.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ti.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}
	if claims.TokenType != want || claims.ID == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}

var errInvalidToken = errors.New("token is invalid or expired")

// UserLoader resolves the active account behind a token.
type UserLoader interface {
	ActiveUser(ctx context.Context, id uint) (*models.User, error)
}

// AuthRequired validates the bearer token, rejects revoked tokens and
// loads the active principal into the context.
func AuthRequired(issuer *TokenIssuer, users UserLoader, denylist Denylist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abort(c, http.StatusUnauthorized, apperr.ErrAuthenticationRequired.Error())
			return
		}
		claims, err := issuer.Parse(strings.TrimPrefix(authHeader, "Bearer "), AccessToken)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		revoked, err := denylist.Revoked(c.Request.Context(), claims.ID)
		if err != nil {
			_ = c.Error(err)
			abort(c, http.StatusServiceUnavailable, "token revocation check failed")
			return
		}
		if revoked {
			abort(c, http.StatusUnauthorized, "Token has been revoked")
			return
		}

		user, err := users.ActiveUser(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, apperr.ErrAuthenticationRequired) {
				abort(c, http.StatusUnauthorized, "User is inactive or does not exist")
				return
			}
			_ = c.Error(err)
			abort(c, http.StatusInternalServerError, "internal server error")
			return
		}

		c.Set(principalKey, user)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// CurrentUser returns the authenticated principal, or nil.
func CurrentUser(c *gin.Context) *models.User {
	val, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	u, _ := val.(*models.User)
	return u
}

// CurrentClaims returns the verified access token claims, or nil.
func CurrentClaims(c *gin.Context) *Claims {
	val, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := val.(*Claims)
	return claims
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
