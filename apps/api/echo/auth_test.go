package echoapi_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	. "github.com/trezcool/mbatrack/apps/api/echo"
	"github.com/trezcool/mbatrack/core"
)

const lockPassword = "open sesame"

func withLockPassword(t *testing.T) func(*core.Config) {
	hash, err := bcrypt.GenerateFromPassword([]byte(lockPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt.GenerateFromPassword() failed: %v", err)
	}
	return func(conf *core.Config) { conf.LockPasswordHash = string(hash) }
}

func Test_authApi_unlock(t *testing.T) {
	app := setup(t, withLockPassword(t))

	runHTTPTests(t, app, []httpTest{
		{
			name: "no password", method: http.MethodPost, path: "/v1/unlock", body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"password": "this field is required"}),
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/v1/unlock", body: []byte(`{"password": "let me in"}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, httpErr{Error: "invalid password"}),
		},
	})

	req, rec := newRequest(http.MethodPost, "/v1/unlock", marshalObj(t, UnlockRequest{Password: lockPassword}))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp UnlockResponse
	unmarshal(t, rec, &resp)

	var claims Claims
	_, err := jwt.ParseWithClaims(resp.Token, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(conf.SecretKey), nil
	})
	assert.NoError(t, err)
	assert.True(t, claims.Unlocked)
	assert.Equal(t, conf.AppName, claims.Issuer)
}

func Test_lockMiddleware(t *testing.T) {
	app := setup(t, withLockPassword(t))

	valid, err := GenerateToken(conf, NewUnlockClaims(conf))
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	expiredClaims := NewUnlockClaims(conf)
	expiredClaims.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	expired, _ := GenerateToken(conf, expiredClaims)

	lockedClaims := NewUnlockClaims(conf)
	lockedClaims.Unlocked = false
	notUnlocked, _ := GenerateToken(conf, lockedClaims)

	invalidToken := marshalObj(t, httpErr{Error: "invalid or expired jwt"})

	runHTTPTests(t, app, []httpTest{
		{name: "home is public", path: "/", wantCode: http.StatusOK},
		{
			name: "no token", path: "/v1/courses",
			wantCode: http.StatusUnauthorized, wantData: marshalObj(t, httpErr{Error: "missing or malformed jwt"}),
		},
		{name: "expired token", path: "/v1/courses", token: expired, wantCode: http.StatusUnauthorized, wantData: invalidToken},
		{name: "not unlocked", path: "/v1/dashboard", token: notUnlocked, wantCode: http.StatusUnauthorized, wantData: invalidToken},
		{name: "unlocked", path: "/v1/courses", token: valid, wantCode: http.StatusOK, wantData: []byte(`[]`)},
		{name: "mobile routes use the api key", path: "/api/mobile/courses", token: valid, wantCode: http.StatusUnauthorized},
	})
}

func Test_lockMiddleware_disabled(t *testing.T) {
	app := setup(t)

	runHTTPTests(t, app, []httpTest{
		{name: "no token needed", path: "/v1/courses", wantCode: http.StatusOK, wantData: []byte(`[]`)},
		{name: "unlock always succeeds", method: http.MethodPost, path: "/v1/unlock", body: []byte(`{}`), wantCode: http.StatusOK},
	})
}
