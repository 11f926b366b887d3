package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/maktaba/core"
	"github.com/trezcool/maktaba/core/catalog"
)

const contextTokenKey = "userToken"

// Claims represents the authorization claims transmitted via a JWT.
// Tokens are issued by the identity provider; this API only verifies them.
type Claims struct {
	jwt.StandardClaims
	Name    string   `json:"name,omitempty"`
	IsAdmin bool     `json:"is_admin,omitempty"`
	Roles   []string `json:"roles,omitempty"`
}

func newJWTConfig(secretKey string) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(secretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// GetOwnerClaims returns the claims of an owner's token; owners are admins of their own resources.
func GetOwnerClaims(owner catalog.Owner, conf *core.Config) *Claims {
	return GetClaims(owner.ID, owner.Name, owner.Role == catalog.RoleAdmin, conf, owner.Role)
}

func GetClaims(email, name string, isAdmin bool, conf *core.Config, roles ...string) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   email,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:    name,
		IsAdmin: isAdmin,
		Roles:   roles,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims, secretKey string) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)

	ss, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// author is the display name reviews are recorded under.
func (c Claims) author() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Subject
}

func (c Claims) person() core.Person {
	return core.Person{ID: c.Subject, Name: c.Name, Email: c.Subject}
}
