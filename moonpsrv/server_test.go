package moonpsrv

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/moonp/internal/moonpcache/inmem"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	accounts := NewInMemAccountStore()
	_, err := accounts.Create(context.Background(), "tester", "hunter22")
	require.NoError(t, err)
	return New([]byte("01234567890123456789012345678901"), 0, accounts, inmem.New())
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func Test_Server_CompileRequiresAuth(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/compile", compileRequest{Source: "x = 1"}, nil)
	assert.Equal(http.StatusUnauthorized, rec.Code)
}

func Test_Server_LoginThenCompile(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)

	loginRec := doJSON(t, srv, http.MethodPost, "/login", loginRequest{Username: "tester", Password: "hunter22"}, nil)
	require.New(t).Equal(http.StatusOK, loginRec.Code)

	var loginResp loginResponse
	require.NoError(t, json.Unmarshal(loginRec.Body.Bytes(), &loginResp))
	require.NotEmpty(t, loginResp.Token)

	compileRec := doJSON(t, srv, http.MethodPost, "/compile", compileRequest{Source: "x = 1"},
		map[string]string{"Authorization": "Bearer " + loginResp.Token})
	assert.Equal(http.StatusOK, compileRec.Code)

	var resp compileResponse
	require.NoError(t, json.Unmarshal(compileRec.Body.Bytes(), &resp))
	assert.Empty(resp.ErrMessage)
	assert.NotEmpty(resp.Lua)
	assert.False(resp.Cached)
}

func Test_Server_LoginBadPassword(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/login", loginRequest{Username: "tester", Password: "wrong"}, nil)
	assert.Equal(http.StatusUnauthorized, rec.Code)
}

func Test_Server_CreateAccountDuplicateConflicts(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/accounts", createAccountRequest{Username: "tester", Password: "whatever1"}, nil)
	assert.Equal(http.StatusConflict, rec.Code)
}
