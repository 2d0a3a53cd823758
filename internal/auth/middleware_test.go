package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func TestJWTMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/private", JWTMiddleware("secret"), func(c *fiber.Ctx) error {
		if c.Locals("user_id") != "user-1" {
			return fiber.NewError(fiber.StatusUnauthorized)
		}
		return c.SendStatus(http.StatusOK)
	})

	// missing token
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized")
	}

	// wrong secret
	bad, _ := IssueToken("other", "user-1", AccessTokenTTL)
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+bad)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized for foreign token")
	}

	// valid token
	token, err := IssueToken("secret", "user-1", AccessTokenTTL)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected ok")
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, _ := IssueToken("secret", "user-1", -time.Minute)
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestParseTokenParserError(t *testing.T) {
	old := parseClaimsFn
	defer func() { parseClaimsFn = old }()
	parseClaimsFn = func(string, jwt.Claims, jwt.Keyfunc, ...jwt.ParserOption) (*jwt.Token, error) {
		return nil, errors.New("boom")
	}
	if _, err := ParseToken("secret", "abc"); err == nil {
		t.Fatalf("expected parser error")
	}
}

func TestVerifyRoute(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), "secret")

	token, _ := IssueToken("secret", "user-7", AccessTokenTTL)
	req := httptest.NewRequest(http.MethodGet, "/auth/jwt/verify", nil)
	req.Header.Set("Authorization", "bearer "+token)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("verify status: %v", err)
	}
}

func TestBearerFromHeader(t *testing.T) {
	if bearerFromHeader("Token abc") != "" || bearerFromHeader("Bearer") != "" {
		t.Fatalf("expected empty token for malformed header")
	}
	if bearerFromHeader("Bearer abc") != "abc" {
		t.Fatalf("expected token")
	}
}

func TestJWTMiddlewareQueryToken(t *testing.T) {
	app := fiber.New()
	app.Get("/ws", JWTMiddleware("secret"), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_id").(string))
	})

	token, _ := IssueToken("secret", "user-1", AccessTokenTTL)
	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/ws?access_token="+token, nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected query token to be accepted, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/ws?access_token=garbage", nil))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected invalid query token to fail, got %d", resp.StatusCode)
	}
}
