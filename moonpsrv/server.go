package moonpsrv

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dekarrin/moonp"
	"github.com/dekarrin/moonp/internal/moonpcache"
)

type ctxKey int

const ctxKeyAccount ctxKey = iota

// Server is a chi-routed HTTP front end over moonp.Compile, with bearer
// token auth and a compile-result cache, the same shape as the teacher's
// TunaQuestServer wraps its game engine.
type Server struct {
	router   chi.Router
	secret   []byte
	delay    time.Duration
	accounts AccountStore
	cache    moonpcache.Store
}

// New builds a Server. secret signs and verifies bearer tokens; it must be
// between MinSecretSize and MaxSecretSize bytes, enforced by Config.Validate
// before this is called.
func New(secret []byte, delay time.Duration, accounts AccountStore, cache moonpcache.Store) *Server {
	srv := &Server{
		secret:   secret,
		delay:    delay,
		accounts: accounts,
		cache:    cache,
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/login", srv.handleLogin)
	r.Post("/accounts", srv.handleCreateAccount)

	r.Group(func(r chi.Router) {
		r.Use(srv.requireAuth)
		r.Post("/compile", srv.handleCompile)
	})

	srv.router = r
	return srv
}

func (srv *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	srv.router.ServeHTTP(w, req)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (srv *Server) handleLogin(w http.ResponseWriter, req *http.Request) {
	var body loginRequest
	if err := parseJSONBody(req, &body); err != nil {
		jsonErr(http.StatusBadRequest, "malformed login request", err.Error()).write(w)
		return
	}

	acct, err := srv.accounts.GetByUsername(req.Context(), body.Username)
	if err != nil {
		time.Sleep(srv.delay)
		jsonErr(http.StatusUnauthorized, ErrBadCredentials.Error(), err.Error()).write(w)
		return
	}

	if err := checkPassword(acct, body.Password); err != nil {
		time.Sleep(srv.delay)
		jsonErr(http.StatusUnauthorized, ErrBadCredentials.Error(), err.Error()).write(w)
		return
	}

	tok, err := issueToken(srv.secret, acct)
	if err != nil {
		jsonErr(http.StatusInternalServerError, "could not issue token", err.Error()).write(w)
		return
	}

	jsonOK(loginResponse{Token: tok}, "issued token for "+acct.Username).write(w)
}

type createAccountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (srv *Server) handleCreateAccount(w http.ResponseWriter, req *http.Request) {
	var body createAccountRequest
	if err := parseJSONBody(req, &body); err != nil {
		jsonErr(http.StatusBadRequest, "malformed account request", err.Error()).write(w)
		return
	}
	if body.Username == "" || body.Password == "" {
		jsonErr(http.StatusBadRequest, ErrBadArgument.Error(), "empty username or password").write(w)
		return
	}

	acct, err := srv.accounts.Create(req.Context(), body.Username, body.Password)
	if err != nil {
		if err == ErrAlreadyExists {
			jsonErr(http.StatusConflict, err.Error(), err.Error()).write(w)
			return
		}
		jsonErr(http.StatusInternalServerError, "could not create account", err.Error()).write(w)
		return
	}

	jsonCreated(map[string]string{"id": acct.ID.String(), "username": acct.Username}, "created account "+acct.Username).write(w)
}

type compileRequest struct {
	Source             string `json:"source"`
	LintGlobalVariable bool   `json:"lint_global_variable"`
	ImplicitReturnRoot bool   `json:"implicit_return_root"`
	ReserveLineNumber  bool   `json:"reserve_line_number"`
	UseSpaceOverTab    bool   `json:"use_space_over_tab"`
	LineOffset         int    `json:"line_offset"`
}

type compileResponse struct {
	Lua        string              `json:"lua,omitempty"`
	ErrMessage string              `json:"error_message,omitempty"`
	Globals    []moonpcache.Global `json:"globals,omitempty"`
	Cached     bool                `json:"cached"`
}

func (srv *Server) handleCompile(w http.ResponseWriter, req *http.Request) {
	var body compileRequest
	if err := parseJSONBody(req, &body); err != nil {
		jsonErr(http.StatusBadRequest, "malformed compile request", err.Error()).write(w)
		return
	}

	opts := moonp.Options{
		LintGlobalVariable: body.LintGlobalVariable,
		ImplicitReturnRoot: body.ImplicitReturnRoot,
		ReserveLineNumber:  body.ReserveLineNumber,
		UseSpaceOverTab:    body.UseSpaceOverTab,
		LineOffset:         body.LineOffset,
	}

	key := moonpcache.Key(body.Source, opts)
	if hit, err := srv.cache.Get(req.Context(), key); err == nil {
		jsonOK(compileResponse{Lua: hit.Lua, ErrMessage: hit.ErrMessage, Globals: hit.Globals, Cached: true}, "cache hit "+key).write(w)
		return
	}

	lua, errMsg, globals := moonp.Compile(body.Source, opts)
	cacheGlobals := moonpcache.FromCompile(globals)

	_, err := srv.cache.Put(req.Context(), moonpcache.Entry{
		Key:        key,
		Lua:        lua,
		ErrMessage: errMsg,
		Globals:    cacheGlobals,
	})
	if err != nil {
		// The compile result is still good even if we failed to memoize it.
		jsonOK(compileResponse{Lua: lua, ErrMessage: errMsg, Globals: cacheGlobals}, "cache put failed: "+err.Error()).write(w)
		return
	}

	jsonOK(compileResponse{Lua: lua, ErrMessage: errMsg, Globals: cacheGlobals}, "compiled "+key).write(w)
}

func (srv *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		tok, err := bearerToken(req)
		if err != nil {
			time.Sleep(srv.delay)
			jsonErr(http.StatusUnauthorized, "authorization required", err.Error()).write(w)
			return
		}

		acct, err := verifyToken(req.Context(), tok, srv.secret, srv.accounts)
		if err != nil {
			time.Sleep(srv.delay)
			jsonErr(http.StatusUnauthorized, "invalid or expired token", err.Error()).write(w)
			return
		}

		ctx := context.WithValue(req.Context(), ctxKeyAccount, acct)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}
