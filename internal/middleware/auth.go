package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"function-gateway/internal/apierror"
)

// SubjectKey stores the authenticated token subject in the gin context
const SubjectKey = "subject"

// Claims represents JWT claims
type Claims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret     string
	TokenDuration time.Duration
	Issuer        string
}

// AuthService issues and validates HS256 bearer tokens
type AuthService struct {
	config *AuthConfig
}

// NewAuthService creates a new authentication service
func NewAuthService(config *AuthConfig) *AuthService {
	if config.TokenDuration == 0 {
		config.TokenDuration = time.Hour
	}
	if config.Issuer == "" {
		config.Issuer = "function-gateway"
	}
	return &AuthService{config: config}
}

// GenerateToken signs a token for subject
func (a *AuthService) GenerateToken(subject, scope string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.config.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    a.config.Issuer,
			Subject:   subject,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(a.config.JWTSecret))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns the claims
func (a *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(a.config.JWTSecret), nil
	}, jwt.WithIssuer(a.config.Issuer))

	if err != nil {
		return nil, errors.Wrap(err, "failed to parse token")
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// Authentication requires a valid "Bearer <token>" Authorization header.
// Failures abort with a 401 envelope.
func Authentication(authService *AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			Abort(c, apierror.New(http.StatusUnauthorized, "Authorization header is required"))
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			Abort(c, apierror.New(http.StatusUnauthorized, "Invalid authorization header format. Expected: Bearer <token>"))
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"request_id": c.GetString(RequestIDKey),
				"error":      err.Error(),
				"path":       c.Request.URL.Path,
			}).Warn("Token validation failed")

			Abort(c, apierror.New(http.StatusUnauthorized, "Invalid or expired token"))
			return
		}

		c.Set(SubjectKey, claims.Subject)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
