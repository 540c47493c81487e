package server

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/sw33tLie/shopscope/internal/utils"
	"github.com/sw33tLie/shopscope/pkg/logview"
	"github.com/sw33tLie/shopscope/pkg/session"
)

//go:embed web
var WebFS embed.FS

// LogFetcher returns the current backend log text.
type LogFetcher func(ctx context.Context) (string, error)

type Server struct {
	Session  *session.Session
	Logs     LogFetcher
	Username string
	Password string
	Location *time.Location

	static http.Handler
	help   []byte
	viewer *logview.Viewer
	poller *logview.Poller

	mu       sync.Mutex
	expanded map[int64]bool
}

func New(sess *session.Session, logs LogFetcher, user, pass string, logInterval time.Duration) (*Server, error) {
	webRoot, err := fs.Sub(WebFS, "web")
	if err != nil {
		return nil, err
	}
	help, err := renderHelp(webRoot)
	if err != nil {
		return nil, err
	}
	s := &Server{
		Session:  sess,
		Logs:     logs,
		Username: user,
		Password: pass,
		Location: time.Local,
		static:   http.StripPrefix("/static/", http.FileServer(http.FS(webRoot))),
		help:     help,
		viewer:   logview.NewViewer(""),
		expanded: map[int64]bool{},
	}
	s.poller = &logview.Poller{
		Interval: logInterval,
		Fetch:    logs,
		OnUpdate: s.viewer.SetRaw,
		Log:      utils.Log,
	}
	return s, nil
}

// Handler returns the console's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Products
	mux.HandleFunc("GET /{$}", s.basicAuth(s.handleIndex))
	mux.HandleFunc("POST /sort", s.basicAuth(s.handleSort))
	mux.HandleFunc("POST /page", s.basicAuth(s.handlePage))
	mux.HandleFunc("POST /reset", s.basicAuth(s.handleReset))
	mux.HandleFunc("POST /refresh", s.basicAuth(s.handleRefresh))
	mux.HandleFunc("POST /products/{id}/expand", s.basicAuth(s.handleExpand))
	mux.HandleFunc("POST /products/{id}/ignore", s.basicAuth(s.handleIgnore))
	mux.HandleFunc("GET /products/{id}/edit", s.basicAuth(s.handleEditForm))
	mux.HandleFunc("POST /products/{id}/edit", s.basicAuth(s.handleEdit))
	mux.HandleFunc("GET /export.csv", s.basicAuth(s.handleExport))

	// Logs
	mux.HandleFunc("GET /logs", s.basicAuth(s.handleLogs))
	mux.HandleFunc("POST /logs/auto", s.basicAuth(s.handleLogsAuto))

	mux.HandleFunc("GET /help", s.basicAuth(s.handleHelp))

	// Static Files
	mux.Handle("GET /static/", s.basicAuthMiddlewareForStatic(s.static))

	return mux
}

// Start serves the console on addr until the listener fails.
func (s *Server) Start(addr string) error {
	defer s.poller.Disable()
	utils.Log.Infof("Starting server on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) authorized(r *http.Request) bool {
	if s.Username == "" && s.Password == "" {
		return true
	}
	user, pass, ok := r.BasicAuth()
	return ok && user == s.Username && pass == s.Password
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) basicAuthMiddlewareForStatic(next http.Handler) http.Handler {
	return s.basicAuth(next.ServeHTTP)
}
