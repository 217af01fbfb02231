package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/mbatrack/core"
)

const unlockTokenKey = "unlockToken"

var errNotUnlocked = errors.New("token does not unlock the app")

// Claims represents the claims of an unlock token: the bearer passed the lock screen.
type Claims struct {
	jwt.StandardClaims
	Unlocked bool `json:"unlocked"`
}

func (c *Claims) Valid() error {
	if err := c.StandardClaims.Valid(); err != nil {
		return err
	}
	if !c.Unlocked {
		return errNotUnlocked
	}
	return nil
}

func jwtConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		// the lock screen is off when no password is configured
		Skipper:       func(echo.Context) bool { return conf.LockPasswordHash == "" },
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    unlockTokenKey,
		Claims:        new(Claims),
	}
}

func lockMiddleware(conf *core.Config) echo.MiddlewareFunc {
	return middleware.JWTWithConfig(jwtConfig(conf))
}

func NewUnlockClaims(conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Unlocked: true,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	cfg := jwtConfig(conf)
	token := jwt.NewWithClaims(jwt.GetSigningMethod(cfg.SigningMethod), claims)

	ss, err := token.SignedString(cfg.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

type (
	authApi struct {
		conf *core.Config
	}

	UnlockRequest struct {
		Password string `json:"password"`
	}

	UnlockResponse struct {
		Token string `json:"token"`
	}
)

func registerAuthAPI(g *echo.Group, conf *core.Config) {
	api := authApi{conf: conf}
	g.POST("/unlock", api.unlock)
}

func (api *authApi) unlock(ctx echo.Context) error {
	var data UnlockRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UnlockRequest")
	}

	if hash := api.conf.LockPasswordHash; hash != "" {
		if data.Password == "" {
			return core.NewValidationError(nil, core.FieldError{Field: "password", Error: "this field is required"})
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(data.Password)); err != nil {
			return errInvalidPassword
		}
	}

	token, err := GenerateToken(api.conf, NewUnlockClaims(api.conf))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, UnlockResponse{Token: token})
}
