//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type cfg struct {
	APIBase     string // http://localhost:8080
	MailhogBase string // http://localhost:8025
	WaitEmail   time.Duration
}

func loadCfg() cfg {
	return cfg{
		APIBase:     getenv("E2E_API_BASE", "http://localhost:8080"),
		MailhogBase: getenv("E2E_MAILHOG_BASE", "http://localhost:8025"),
		WaitEmail:   mustParseDur(getenv("E2E_WAIT_EMAIL", "30s")),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustParseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(err)
	}
	return d
}

// --- API DTOs

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type postResp struct {
	ID    int64    `json:"id"`
	Title string   `json:"title"`
	Views int64    `json:"views"`
	Tags  []string `json:"tags"`
}

// --- Mailhog API v2 response

type mailhogMessages struct {
	Count    int          `json:"count"`
	Total    int          `json:"total"`
	Messages []mailhogMsg `json:"items"`
}
type mailhogMsg struct {
	To      []mailhogPerson `json:"To"`
	Content struct {
		Headers map[string][]string `json:"Headers"`
		Body    string              `json:"Body"`
	} `json:"Content"`
}
type mailhogPerson struct {
	Mailbox string `json:"Mailbox"`
	Domain  string `json:"Domain"`
}

func (p mailhogPerson) Email() string {
	if p.Domain == "" {
		return p.Mailbox
	}
	return p.Mailbox + "@" + p.Domain
}

// --- helpers

func postJSON(t *testing.T, url string, in any, out any, bearer string) {
	t.Helper()
	b, _ := json.Marshal(in)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		t.Fatalf("POST %s => %d: %s", url, resp.StatusCode, string(body))
	}
	if out != nil {
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			t.Fatalf("unmarshal %s: %v; body=%s", url, err, string(body))
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("unmarshal %s data: %v; data=%s", url, err, string(env.Data))
		}
	}
}

func getStatus(t *testing.T, url, bearer string) int {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func getJSON(t *testing.T, url string, into any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)
	all, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(all, into))
}

func register(t *testing.T, base, username, email, password string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	data, _ := json.Marshal(map[string]string{
		"username": username, "email": email,
		"password": password, "checkPassword": password,
	})
	require.NoError(t, mw.WriteField("data", string(data)))
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest(http.MethodPost, base+"/registers", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		t.Fatalf("register => %d: %s", resp.StatusCode, string(body))
	}
}

// --- the test itself

func Test_SignupToPost_FullJourney(t *testing.T) {
	c := loadCfg()

	for {
		t.Log("waiting for board-api...")
		resp, err := http.Get(c.APIBase + "/posts")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == 200 {
				break
			}
		}
		time.Sleep(1 * time.Second)
	}

	suffix := time.Now().UnixNano()
	username := fmt.Sprintf("e2e_%d", suffix)
	email := fmt.Sprintf("e2e_%d@board.dev", suffix)
	pass := "P@ssw0rd!"

	// 1) ask for a verification code and pull it out of mailhog
	postJSON(t, c.APIBase+"/mail/send", map[string]string{"email": email}, nil, "")
	code := waitForCode(t, c, email)
	t.Logf("verification code: %s", code)
	postJSON(t, c.APIBase+"/mail/check", map[string]string{"email": email, "code": code}, nil, "")

	// 2) register and log in
	register(t, c.APIBase, username, email, pass)

	var tokens tokenPair
	postJSON(t, c.APIBase+"/logins", map[string]string{
		"username": username,
		"password": pass,
	}, &tokens, "")
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)
	t.Logf("logged in as %s", username)

	// 3) write a post, read it back, comment on it
	var created postResp
	postJSON(t, c.APIBase+"/posts", map[string]any{
		"title":   "hello from e2e",
		"content": "body",
		"tags":    []string{"e2e", "go"},
	}, &created, tokens.AccessToken)
	require.NotZero(t, created.ID)
	t.Logf("post created (id=%d)", created.ID)

	var got postResp
	getJSON(t, fmt.Sprintf("%s/posts/%d", c.APIBase, created.ID), &struct {
		Code int       `json:"code"`
		Data *postResp `json:"data"`
	}{Data: &got})
	require.Equal(t, int64(1), got.Views)
	require.ElementsMatch(t, []string{"e2e", "go"}, got.Tags)

	postJSON(t, fmt.Sprintf("%s/posts/%d/comments", c.APIBase, created.ID),
		map[string]string{"content": "first!"}, nil, tokens.AccessToken)

	// 4) logout kills the access token for its remaining lifetime
	require.Equal(t, 200, getStatus(t, c.APIBase+"/logout", tokens.AccessToken))
	require.Equal(t, http.StatusUnauthorized,
		getStatus(t, c.APIBase+"/users/profile", tokens.AccessToken))
}

func waitForCode(t *testing.T, c cfg, email string) string {
	t.Helper()
	re := regexp.MustCompile(`\d{6}`)
	deadline := time.Now().Add(c.WaitEmail)
	for time.Now().Before(deadline) {
		for _, m := range fetchMailhog(t, c, email) {
			if code := re.FindString(m.Content.Body); code != "" {
				return code
			}
		}
		time.Sleep(1 * time.Second)
	}
	t.Fatalf("no verification code for %s within %s", email, c.WaitEmail)
	return ""
}

func fetchMailhog(t *testing.T, c cfg, toEmail string) []mailhogMsg {
	t.Helper()
	var out mailhogMessages
	getJSON(t, c.MailhogBase+"/api/v2/messages", &out)
	var res []mailhogMsg
	for _, m := range out.Messages {
		for _, rcpt := range m.To {
			if strings.EqualFold(rcpt.Email(), toEmail) {
				res = append(res, m)
				break
			}
		}
	}
	return res
}
