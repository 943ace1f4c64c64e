package routes

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"tour-booking-server/models"
)

func TestRegisterLoginRefreshLogout(t *testing.T) {
	env := buildTestApp(t)

	resp := env.do(http.MethodPost, "/register", url.Values{
		"username": {"alice"},
		"email":    {"alice@example.com"},
		"password": {"correct-horse"},
	}, "")
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = env.do(http.MethodPost, "/register", url.Values{
		"username": {"alice"},
		"email":    {"alice@example.com"},
		"password": {"correct-horse"},
	}, "")
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate username, got %d", resp.Code)
	}

	resp = env.do(http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"nope"}}, "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", resp.Code)
	}
	var failure struct {
		ErrorMessage string `json:"error_message"`
	}
	decode(t, resp, &failure)
	if failure.ErrorMessage != loginFailedMessage {
		t.Fatalf("unexpected message %q", failure.ErrorMessage)
	}

	resp = env.do(http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"correct-horse"}}, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var pair struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	decode(t, resp, &pair)
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected a token pair, got %+v", pair)
	}

	if resp := env.do(http.MethodGet, "/bookings", nil, pair.AccessToken); resp.Code != http.StatusOK {
		t.Fatalf("expected access token to work, got %d", resp.Code)
	}

	resp = env.do(http.MethodPost, "/token/refresh", url.Values{"refresh_token": {pair.RefreshToken}}, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on refresh, got %d: %s", resp.Code, resp.Body.String())
	}
	var refreshed struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	decode(t, resp, &refreshed)
	if refreshed.RefreshToken == "" {
		t.Fatal("expected a new refresh token")
	}

	resp = env.do(http.MethodPost, "/token/refresh", url.Values{"refresh_token": {pair.RefreshToken}}, "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("a refresh token must only be usable once, got %d", resp.Code)
	}

	resp = env.do(http.MethodGet, "/logout?refresh_token="+url.QueryEscape(refreshed.RefreshToken), nil, pair.AccessToken)
	if resp.Code != http.StatusSeeOther || resp.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect home, got %d", resp.Code)
	}
	if resp := env.do(http.MethodGet, "/bookings", nil, pair.AccessToken); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected logged out token to be rejected, got %d", resp.Code)
	}
	resp = env.do(http.MethodPost, "/token/refresh", url.Values{"refresh_token": {refreshed.RefreshToken}}, "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected revoked refresh token to be rejected, got %d", resp.Code)
	}
}

func TestDeactivatedUserCannotLogin(t *testing.T) {
	env := buildTestApp(t)
	admin := env.seedUser(t, "root", models.RoleAdmin)

	resp := env.do(http.MethodPost, "/register", url.Values{
		"username": {"bob"},
		"email":    {"bob@example.com"},
		"password": {"correct-horse"},
	}, "")
	var created struct {
		Data models.User `json:"data"`
	}
	decode(t, resp, &created)

	resp = env.do(http.MethodPost, fmt.Sprintf("/admin/users/%d/deactivate", created.Data.ID), nil, signTestToken(admin.ID, "admin"))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = env.do(http.MethodPost, "/login", url.Values{"username": {"bob"}, "password": {"correct-horse"}}, "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deactivated account, got %d", resp.Code)
	}
}
