package stubserver

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, h http.Handler, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return do(t, h, req)
}

func login(t *testing.T, h http.Handler, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(t, h, req)
}

func tokenFor(t *testing.T, h http.Handler, email, password string) string {
	t.Helper()
	require.Equal(t, http.StatusOK, register(t, h, email, password).Code)
	rec := login(t, h, email, password)
	require.Equal(t, http.StatusOK, rec.Code)

	var tok map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	require.NotEmpty(t, tok["access_token"])
	return tok["access_token"]
}

func authed(method, target, token string, body *bytes.Buffer) *http.Request {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var d map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	return d["detail"]
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h := New(testSecret).Handler()

	rec := register(t, h, "a@example.com", "pw")
	require.Equal(t, http.StatusOK, rec.Code)

	var u userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	assert.Equal(t, "a@example.com", u.Email)
	assert.True(t, u.IsActive)
	assert.NotZero(t, u.ID)

	rec = register(t, h, "a@example.com", "other")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", detail(t, rec))
}

func TestRegister_ValidatesBody(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		field    string
	}{
		{name: "malformed email", email: "not-an-email", password: "pw", field: "email (email)"},
		{name: "missing email", email: "", password: "pw", field: "email (required)"},
		{name: "missing password", email: "a@example.com", password: "", field: "password (required)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(testSecret)
			rec := register(t, s.Handler(), tt.email, tt.password)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, detail(t, rec), tt.field)
		})
	}
}

func TestRegister_MalformedJSON(t *testing.T) {
	h := New(testSecret).Handler()
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader("{"))
	rec := do(t, h, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "invalid request body", detail(t, rec))
}

func TestToken_BadCredentials(t *testing.T) {
	h := New(testSecret).Handler()
	require.Equal(t, http.StatusOK, register(t, h, "a@example.com", "pw").Code)

	rec := login(t, h, "a@example.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

	rec = login(t, h, "nobody@example.com", "pw")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestToken_WithoutAccessToken(t *testing.T) {
	h := New(testSecret, WithoutAccessToken()).Handler()
	require.Equal(t, http.StatusOK, register(t, h, "a@example.com", "pw").Code)

	rec := login(t, h, "a@example.com", "pw")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "access_token")
}

func TestMe(t *testing.T) {
	h := New(testSecret).Handler()
	token := tokenFor(t, h, "a@example.com", "pw")

	rec := do(t, h, authed(http.MethodGet, "/users/me", token, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var u userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	assert.Equal(t, "a@example.com", u.Email)
}

func TestMe_RejectsMissingAndBadTokens(t *testing.T) {
	s := New(testSecret)
	h := s.Handler()
	require.Equal(t, http.StatusOK, register(t, h, "a@example.com", "pw").Code)

	expired, err := s.IssueToken("a@example.com", -time.Minute)
	require.NoError(t, err)
	foreign, err := New([]byte("other-secret")).IssueToken("a@example.com", time.Minute)
	require.NoError(t, err)
	unknown, err := s.IssueToken("ghost@example.com", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage", "Bearer not-a-jwt"},
		{"expired", "Bearer " + expired},
		{"wrong secret", "Bearer " + foreign},
		{"unknown subject", "Bearer " + unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := do(t, h, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func upload(t *testing.T, h http.Handler, token, name string, data []byte) fileResponse {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := authed(http.MethodPost, "/files/upload", token, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := do(t, h, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var f fileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &f))
	return f
}

func TestFiles_Lifecycle(t *testing.T) {
	s := New(testSecret)
	h := s.Handler()
	token := tokenFor(t, h, "a@example.com", "pw")

	data := []byte{0x00, 0xff, 0x10, 0x00}
	f := upload(t, h, token, "bin.dat", data)
	assert.Equal(t, "bin.dat", f.Filename)
	assert.Equal(t, int64(len(data)), f.FileSize)
	assert.Equal(t, 1, s.FileCount())

	rec := do(t, h, authed(http.MethodGet, "/files", token, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []fileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, f.ID, list[0].ID)

	rec = do(t, h, authed(http.MethodGet, "/files/1/download", token, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, data, rec.Body.Bytes())

	rec = do(t, h, authed(http.MethodDelete, "/files/1", token, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
	assert.Equal(t, 0, s.FileCount())

	rec = do(t, h, authed(http.MethodGet, "/files/1/download", token, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "File not found", detail(t, rec))
}

func TestFiles_OwnerScoping(t *testing.T) {
	h := New(testSecret).Handler()
	alice := tokenFor(t, h, "alice@example.com", "pw")
	bob := tokenFor(t, h, "bob@example.com", "pw")

	upload(t, h, alice, "a.txt", []byte("alice"))

	rec := do(t, h, authed(http.MethodGet, "/files/", bob, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = do(t, h, authed(http.MethodGet, "/files/1/download", bob, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, authed(http.MethodDelete, "/files/1", bob, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFiles_Paging(t *testing.T) {
	h := New(testSecret).Handler()
	token := tokenFor(t, h, "a@example.com", "pw")
	for _, name := range []string{"1", "2", "3", "4"} {
		upload(t, h, token, name, []byte(name))
	}

	rec := do(t, h, authed(http.MethodGet, "/files?skip=1&limit=2", token, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []fileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "2", list[0].Filename)
	assert.Equal(t, "3", list[1].Filename)

	rec = do(t, h, authed(http.MethodGet, "/files?skip=x", token, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
