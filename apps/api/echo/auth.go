package echoapi

import (
	"net/http"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/coursework/core"
)

const claimsContextKey = "actorToken"

var errClaimsNotFound = errors.New("jwt claims not found in echo.Context")

// Claims is the identity assertion issued by the user service.
// Subject carries the user id.
type Claims struct {
	jwt.StandardClaims
	Name      string   `json:"name,omitempty"`
	Email     string   `json:"email,omitempty"`
	IsStudent bool     `json:"is_student"`
	IsTeacher bool     `json:"is_teacher"`
	IsAdmin   bool     `json:"is_admin"`
	Roles     []string `json:"roles,omitempty"`
}

// Actor returns the engine identity asserted by c.
func (c *Claims) Actor() core.Actor {
	roles := append([]string(nil), c.Roles...)
	actor := core.Actor{ID: c.Subject, Name: c.Name, Email: c.Email}
	// flags without a matching role still count
	if c.IsAdmin && !hasRolePrefix(roles, core.RoleAdmin) {
		roles = append(roles, core.RoleAdmin)
	}
	if c.IsTeacher && !hasRolePrefix(roles, core.RoleTeacher) {
		roles = append(roles, core.RoleTeacher)
	}
	if c.IsStudent && !hasRolePrefix(roles, core.RoleStudent) {
		roles = append(roles, core.RoleStudent)
	}
	actor.Roles = roles
	return actor
}

func hasRolePrefix(roles []string, prefix string) bool {
	return core.Actor{Roles: roles}.RoleStartsWith(prefix)
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    claimsContextKey,
		Claims:        new(Claims),
	}
}

// ActorClaims builds the claims asserting actor, valid for conf.Server.JWTExpirationDelta.
func ActorClaims(actor core.Actor, conf *core.Config) Claims {
	now := core.Now()
	return Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   actor.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
		},
		Name:      actor.Name,
		Email:     actor.Email,
		IsStudent: actor.IsStudent(),
		IsTeacher: actor.IsTeacher(),
		IsAdmin:   actor.IsAdmin(),
		Roles:     actor.Roles,
	}
}

// GenerateToken signs claims with the configured secret key.
func GenerateToken(claims Claims, conf *core.Config) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(conf.SecretKey))
}

func getContextClaims(ctx echo.Context) (*Claims, error) {
	token, ok := ctx.Get(claimsContextKey).(*jwt.Token)
	if !ok {
		return nil, errClaimsNotFound
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return nil, errClaimsNotFound
	}
	return claims, nil
}

func getContextActor(ctx echo.Context) (core.Actor, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return core.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "actor not authenticated").SetInternal(err)
	}
	return claims.Actor(), nil
}
