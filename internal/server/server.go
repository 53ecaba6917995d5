package server

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/sw33tLie/upgradefeed/internal/utils"
	"github.com/sw33tLie/upgradefeed/pkg/source"
)

// Server serves the feed page and its JSON API. Every request is its own
// session: the loader is queried once and the request's filters applied.
type Server struct {
	Loader      source.Loader
	Username    string
	Password    string
	RichFilters bool
	Title       string

	now func() time.Time
}

func New(loader source.Loader, user, pass string, richFilters bool) *Server {
	return &Server{
		Loader:      loader,
		Username:    user,
		Password:    pass,
		RichFilters: richFilters,
		now:         time.Now,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// API Group
	mux.HandleFunc("GET /api/upgrades", s.basicAuth(s.handleUpgrades))
	mux.HandleFunc("GET /api/projects", s.basicAuth(s.handleProjects))

	mux.HandleFunc("GET /{$}", s.basicAuth(s.handleIndex))
	return mux
}

func (s *Server) Start(addr string) error {
	utils.Log.WithField("source", s.Loader.Name()).Infof("Starting server on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || !credentialsMatch(user, pass, s.Username, s.Password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func credentialsMatch(user, pass, wantUser, wantPass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(wantUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(wantPass)) == 1
	return userOK && passOK
}
