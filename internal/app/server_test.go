package app

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/gcapi/internal/auth"
	"github.com/GoArmGo/gcapi/internal/core/ports"
	"github.com/GoArmGo/gcapi/internal/database/dbtest"
	"github.com/GoArmGo/gcapi/internal/database/storage"
	"github.com/GoArmGo/gcapi/internal/logger"
	"github.com/GoArmGo/gcapi/internal/messaging"
	"github.com/GoArmGo/gcapi/internal/usecase"
)

const testSecret = "router-test-secret"

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type capturingNotifier struct{ message string }

func (n *capturingNotifier) Notify(_ context.Context, _, _, message string) error {
	n.message = message
	return nil
}

type memoryFiles struct{ keys []string }

func (m *memoryFiles) UploadFile(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	m.keys = append(m.keys, key)
	return "http://files.test/products/" + key, nil
}

func (m *memoryFiles) DeleteFile(context.Context, string) error { return nil }

type testAPI struct {
	t        *testing.T
	srv      *httptest.Server
	notifier *capturingNotifier
	files    *memoryFiles
}

func newTestAPI(t *testing.T, withFiles bool) *testAPI {
	t.Helper()

	db := dbtest.NewDB(t)
	log := logger.Discard()
	userStorage := storage.NewUserStorage(db, log)
	hasher := auth.NewBcryptHasher(4)

	api := &testAPI{t: t, notifier: &capturingNotifier{}, files: &memoryFiles{}}
	authUC := usecase.NewAuthUseCase(userStorage, hasher, auth.NewTokenManager(testSecret), api.notifier, usecase.AuthConfig{
		AccessTTL:       time.Minute,
		VerificationTTL: time.Hour,
		PublicBaseURL:   "http://api.test",
	}, log)

	var files ports.FileStorage
	if withFiles {
		files = api.files
	}

	router := NewRouter(RouterDeps{
		AuthUseCase:    authUC,
		UserUseCase:    usecase.NewUserUseCase(userStorage, hasher, messaging.NewInlinePublisher(authUC.SendVerification, log), log),
		GCUseCase:      usecase.NewGCUseCase(storage.NewGCStorage(db, log), log),
		ProductUseCase: usecase.NewProductUseCase(storage.NewProductStorage(db, log), files, log),
		DB:             stubPinger{},
		RequestTimeout: 5 * time.Second,
		Logger:         log,
	})
	api.srv = httptest.NewServer(router)
	t.Cleanup(api.srv.Close)
	return api
}

// do выполняет запрос и возвращает статус и декодированное JSON тело.
func (a *testAPI) do(method, path, token string, body any) (int, map[string]any, http.Header) {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, reader)
	require.NoError(a.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.send(req)
}

func (a *testAPI) send(req *http.Request) (int, map[string]any, http.Header) {
	a.t.Helper()

	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)

	var out map[string]any
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") && raw[0] == '{' {
		require.NoError(a.t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out, resp.Header
}

func (a *testAPI) list(path, token string) (int, []map[string]any) {
	a.t.Helper()

	req, err := http.NewRequest(http.MethodGet, a.srv.URL+path, nil)
	require.NoError(a.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var out []map[string]any
	if resp.StatusCode == http.StatusOK {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func (a *testAPI) register(username, password string) map[string]any {
	a.t.Helper()
	code, body, _ := a.do(http.MethodPost, "/users/", "", map[string]string{
		"username": username,
		"email":    username + "@x.io",
		"password": password,
	})
	require.Equal(a.t, http.StatusCreated, code, "register %s: %v", username, body)
	return body
}

func (a *testAPI) token(username, password string) (int, map[string]any) {
	a.t.Helper()
	resp, err := http.PostForm(a.srv.URL+"/token", url.Values{"username": {username}, "password": {password}})
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (a *testAPI) login(username, password string) string {
	a.t.Helper()
	code, body := a.token(username, password)
	require.Equal(a.t, http.StatusOK, code, "token: %v", body)
	return body["access_token"].(string)
}

func TestRegisterIssueAndMe(t *testing.T) {
	api := newTestAPI(t, false)

	created := api.register("alice1", "secret123")
	assert.Equal(t, "alice1", created["username"])
	assert.Equal(t, "alice1@x.io", created["email"])
	assert.NotContains(t, created, "password")
	assert.NotZero(t, created["id"])

	code, body := api.token("alice1", "secret123")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "bearer", body["token_type"])
	token := body["access_token"].(string)

	code, me, _ := api.do(http.MethodPost, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", me["status"])
	data := me["data"].(map[string]any)
	assert.Equal(t, "alice1", data["username"])
	assert.Equal(t, false, data["is_verified"])
	assert.Equal(t, time.Now().UTC().Format("Jan 02 2006"), data["join_date"])
	assert.NotContains(t, data, "password")
}

func TestCreateThenGetWithoutEmail(t *testing.T) {
	api := newTestAPI(t, false)

	code, created, _ := api.do(http.MethodPost, "/users/", "", map[string]string{"username": "alice1", "password": "secretpw"})
	require.Equal(t, http.StatusCreated, code, created)

	code, got, _ := api.do(http.MethodGet, fmt.Sprintf("/users/%d", uint(created["id"].(float64))), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alice1", got["username"])
	assert.Nil(t, got["email"])
	assert.NotContains(t, got, "password")
	assert.NotContains(t, got, "is_verified")
}

func TestRegisterRejections(t *testing.T) {
	api := newTestAPI(t, false)
	api.register("alice1", "secret123")

	cases := []struct {
		body   map[string]string
		detail string
	}{
		{map[string]string{"username": "bobby1", "email": "b@x.io", "password": "short"}, "Password too short"},
		{map[string]string{"username": "bob", "email": "b@x.io", "password": "secret123"}, "Username too short"},
		{map[string]string{"username": "alice1", "email": "other@x.io", "password": "secret123"}, "Username exists"},
		{map[string]string{"username": "bobby1", "email": "alice1@x.io", "password": "secret123"}, "Email exists"},
		{map[string]string{"username": "bobby1", "email": "b@x.io"}, "Field required: password"},
	}
	for _, tc := range cases {
		code, body, _ := api.do(http.MethodPost, "/users/", "", tc.body)
		assert.Equal(t, http.StatusBadRequest, code, tc.detail)
		assert.Equal(t, tc.detail, body["detail"])
	}

	code, body, _ := api.do(http.MethodPost, "/users/", "", map[string]any{"username": "bobby1", "unknown": 1})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["detail"], "Invalid JSON body")
}

func TestTokenRejections(t *testing.T) {
	api := newTestAPI(t, false)
	api.register("alice1", "secret123")

	code, body := api.token("alice1", "wrongpass")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid username or password", body["detail"])

	code, _ = api.token("nobody", "secret123")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = api.token("alice1", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestProtectedRoutesRejectBadTokens(t *testing.T) {
	api := newTestAPI(t, false)
	created := api.register("alice1", "secret123")
	token := api.login("alice1", "secret123")
	userID := uint(created["id"].(float64))

	expired, err := auth.NewTokenManager(testSecret).Generate(userID, "alice1", auth.TokenTypeAccess, -time.Minute)
	require.NoError(t, err)
	foreign, err := auth.NewTokenManager("another-secret").Generate(userID, "alice1", auth.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	code, body, header := api.do(http.MethodGet, "/users/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Not authenticated", body["detail"])
	assert.Equal(t, "Bearer", header.Get("WWW-Authenticate"))

	for name, bad := range map[string]string{
		"expired":  expired,
		"foreign":  foreign,
		"tampered": tamperPayload(token),
		"garbage":  "not-a-jwt",
	} {
		code, body, header := api.do(http.MethodPost, "/users/me", bad, nil)
		assert.Equal(t, http.StatusUnauthorized, code, name)
		assert.Equal(t, "Unauthorized", body["detail"], name)
		assert.Equal(t, "Bearer", header.Get("WWW-Authenticate"), name)
	}

	code, users := api.list("/users/", token)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, users, 1)
	assert.NotContains(t, users[0], "password")
}

// tamperPayload подменяет claims, оставляя исходную подпись.
func tamperPayload(token string) string {
	parts := strings.Split(token, ".")
	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"1","typ":"access","exp":4102444800}`))
	return parts[0] + "." + forged + "." + parts[2]
}

func TestUserUpdateAndDelete(t *testing.T) {
	api := newTestAPI(t, false)
	created := api.register("alice1", "secret123")
	path := fmt.Sprintf("/users/%d", uint(created["id"].(float64)))

	code, updated, _ := api.do(http.MethodPut, path, "", map[string]string{"email": "new@x.io"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alice1", updated["username"])
	assert.Equal(t, "new@x.io", updated["email"])

	code, _, _ = api.do(http.MethodPut, path, "", map[string]string{"password": "anotherpass"})
	require.Equal(t, http.StatusOK, code)
	api.login("alice1", "anotherpass")

	code, _, _ = api.do(http.MethodDelete, path, "", nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, body, _ := api.do(http.MethodDelete, path, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found", body["detail"])

	code, body, _ = api.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found", body["detail"])

	code, body, _ = api.do(http.MethodGet, "/users/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid id", body["detail"])

	// целые вне диапазона существующих id ведут себя как отсутствующие записи
	for _, tc := range []struct{ path, detail string }{
		{"/users/0", "User not found"},
		{"/users/-1", "User not found"},
		{"/users/4294967296", "User not found"},
		{"/users/99999999999999999999", "User not found"},
		{"/gcs/0", "GC not found"},
		{"/products/0", "Product not found"},
	} {
		for _, method := range []string{http.MethodGet, http.MethodDelete} {
			code, body, _ := api.do(method, tc.path, "", nil)
			assert.Equal(t, http.StatusNotFound, code, method+" "+tc.path)
			assert.Equal(t, tc.detail, body["detail"], method+" "+tc.path)
		}
	}
}

func TestGCOwnershipAndCascade(t *testing.T) {
	api := newTestAPI(t, false)
	created := api.register("alice1", "secret123")
	token := api.login("alice1", "secret123")

	code, _, _ := api.do(http.MethodPost, "/gcs/", "", map[string]string{"name": "club"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, gc, _ := api.do(http.MethodPost, "/gcs/", token, map[string]string{"name": "club"})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, created["id"], gc["owner_id"])
	gcPath := fmt.Sprintf("/gcs/%d", uint(gc["id"].(float64)))

	code, renamed, _ := api.do(http.MethodPut, gcPath, "", map[string]string{"name": "renamed"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "renamed", renamed["name"])

	code, _, _ = api.do(http.MethodDelete, fmt.Sprintf("/users/%d", uint(created["id"].(float64))), "", nil)
	require.Equal(t, http.StatusNoContent, code)

	code, body, _ := api.do(http.MethodGet, gcPath, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "GC not found", body["detail"])
}

func TestProductPagination(t *testing.T) {
	api := newTestAPI(t, false)
	for i := 1; i <= 15; i++ {
		code, _, _ := api.do(http.MethodPost, "/products/", "", map[string]any{"name": fmt.Sprintf("p%02d", i), "price": 1.25, "stock": i})
		require.Equal(t, http.StatusCreated, code)
	}

	code, page := api.list("/products/", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, page, 10)

	code, page = api.list("/products/?skip=10&limit=10", "")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, page, 5)
	assert.Equal(t, "p11", page[0]["name"])

	code, _ = api.list("/products/?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = api.list("/products/?skip=-1", "")
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = api.list("/products/?limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, body, _ := api.do(http.MethodPost, "/products/", "", map[string]any{"name": "bad", "price": -3})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Price must be non-negative", body["detail"])
}

func TestVerificationEndpoint(t *testing.T) {
	api := newTestAPI(t, false)
	api.register("alice1", "secret123")

	_, token, found := strings.Cut(api.notifier.message, "http://api.test/verification?token=")
	require.True(t, found, api.notifier.message)

	resp, err := http.Get(api.srv.URL + "/verification?token=" + url.QueryEscape(strings.TrimSpace(token)))
	require.NoError(t, err)
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(page), "alice1")

	access := api.login("alice1", "secret123")
	_, me, _ := api.do(http.MethodPost, "/users/me", access, nil)
	assert.Equal(t, true, me["data"].(map[string]any)["is_verified"])

	code, _, _ := api.do(http.MethodGet, "/verification?token="+access, "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func imageUpload(t *testing.T, target, contentType string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="pic.png"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, target, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestProductImageUpload(t *testing.T) {
	api := newTestAPI(t, true)
	code, product, _ := api.do(http.MethodPost, "/products/", "", map[string]any{"name": "pen"})
	require.Equal(t, http.StatusCreated, code)
	path := fmt.Sprintf("%s/products/%d/image", api.srv.URL, uint(product["id"].(float64)))

	// тип определяется по содержимому, если клиент его не указал
	code, updated, _ := api.send(imageUpload(t, path, "", pngHeader))
	require.Equal(t, http.StatusOK, code, updated)
	assert.True(t, strings.HasPrefix(updated["image_url"].(string), "http://files.test/products/products/"))
	require.Len(t, api.files.keys, 1)

	code, body, _ := api.send(imageUpload(t, path, "text/plain", []byte("hello")))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "File must be an image", body["detail"])

	code, _, _ = api.send(imageUpload(t, api.srv.URL+"/products/999/image", "image/png", pngHeader))
	assert.Equal(t, http.StatusNotFound, code)
}

func TestProductImageUploadWithoutStorage(t *testing.T) {
	api := newTestAPI(t, false)
	code, product, _ := api.do(http.MethodPost, "/products/", "", map[string]any{"name": "pen"})
	require.Equal(t, http.StatusCreated, code)

	path := fmt.Sprintf("%s/products/%d/image", api.srv.URL, uint(product["id"].(float64)))
	code, body, _ := api.send(imageUpload(t, path, "image/png", pngHeader))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "File storage is not configured", body["detail"])
}

func TestHealthz(t *testing.T) {
	log := logger.Discard()
	for _, tc := range []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{errors.New("db down"), http.StatusServiceUnavailable},
	} {
		router := NewRouter(RouterDeps{DB: stubPinger{err: tc.err}, Logger: log})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, tc.want, rec.Code)
	}
}
