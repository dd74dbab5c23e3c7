//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"testing"
	"time"
)

// The full session lifecycle against a running stack: register, login,
// call a protected route, rotate via refresh, logout, and confirm the
// blacklisted token is dead.
func TestSessionLifecycle(t *testing.T) {
	cfg := LoadCfg()
	WaitHTTPOK(t, "board-api", cfg.APIBase+"/posts", 60*time.Second)

	username := fmt.Sprintf("it-user-%d", time.Now().UnixNano())
	email := username + "@example.com"

	// Registration goes through the multipart endpoint; JSON-only is
	// enough here, no image.
	resp, _ := registerMultipart(t, cfg.APIBase, username, email, "secret123")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register: status %d", resp.StatusCode)
	}

	var tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	resp, raw := postJSON(t, cfg.APIBase+"/logins", "", map[string]string{
		"username": username, "password": "secret123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d body %s", resp.StatusCode, raw)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("login envelope: %v", err)
	}
	if err := json.Unmarshal(env.Data, &tokens); err != nil {
		t.Fatalf("login data: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("login: empty tokens")
	}

	// Protected route with the access token.
	resp, _ = do(t, http.MethodGet, cfg.APIBase+"/users/profile", tokens.AccessToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile: status %d", resp.StatusCode)
	}

	// Refresh hands back a fresh access token.
	resp, raw = postJSON(t, cfg.APIBase+"/refresh", tokens.RefreshToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh: status %d body %s", resp.StatusCode, raw)
	}

	// Logout blacklists the access token; the next call must fail.
	resp, _ = do(t, http.MethodGet, cfg.APIBase+"/logout", tokens.AccessToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: status %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodGet, cfg.APIBase+"/users/profile", tokens.AccessToken, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("blacklisted token accepted: status %d", resp.StatusCode)
	}
}

func TestVerificationMailDelivered(t *testing.T) {
	cfg := LoadCfg()
	WaitHTTPOK(t, "board-api", cfg.APIBase+"/posts", 60*time.Second)

	email := fmt.Sprintf("it-mail-%d@example.com", time.Now().UnixNano())
	resp, raw := postJSON(t, cfg.APIBase+"/mail/send", "", map[string]string{"email": email})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("mail send: status %d body %s", resp.StatusCode, raw)
	}

	body := WaitEmailTo(t, cfg.MailhogAPI, email, cfg.WaitEmail)
	code := regexp.MustCompile(`\d{6}`).FindString(body)
	if code == "" {
		t.Fatalf("no 6-digit code in mail body: %q", body)
	}

	resp, raw = postJSON(t, cfg.APIBase+"/mail/check", "", map[string]string{
		"email": email, "code": code,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("mail check: status %d body %s", resp.StatusCode, raw)
	}

	// The notifier records the delivery.
	db := OpenDB(t, cfg.DBDSN)
	defer db.Close()
	var n int
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if err := db.QueryRow(`SELECT count(*) FROM mail_log WHERE email = $1`, email).Scan(&n); err == nil && n > 0 {
			return
		}
		time.Sleep(time.Second)
	}
	t.Fatalf("no mail_log row for %s", email)
}
