package stubserver

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/clouddrive/internal/common"
	"github.com/dmitrijs2005/clouddrive/internal/logging"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

const defaultTokenTTL = 30 * time.Minute

type user struct {
	ID        int64
	Email     string
	Hash      []byte
	IsActive  bool
	CreatedAt time.Time
}

type storedFile struct {
	ID        int64
	Filename  string
	Size      int64
	CreatedAt time.Time
	OwnerID   int64
	Data      []byte
}

// Server is safe for concurrent use.
type Server struct {
	secret    []byte
	tokenTTL  time.Duration
	omitToken bool
	logger    logging.Logger
	now       func() time.Time
	validate  *validator.Validate

	mu         sync.Mutex
	nextUserID int64
	nextFileID int64
	users      map[string]*user
	files      map[int64]*storedFile

	router *mux.Router
}

type Option func(*Server)

func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.tokenTTL = d }
}

// WithoutAccessToken makes /token answer 200 without an access_token field.
func WithoutAccessToken() Option {
	return func(s *Server) { s.omitToken = true }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func New(secret []byte, opts ...Option) *Server {
	s := &Server{
		secret:   secret,
		tokenTTL: defaultTokenTTL,
		logger:   logging.NewNop(),
		now:      time.Now,
		validate: validator.New(),
		users:    make(map[string]*user),
		files:    make(map[int64]*storedFile),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/users", s.handleCreateUser).Methods(http.MethodPost)
	r.HandleFunc("/token", s.handleToken).Methods(http.MethodPost)

	authed := r.NewRoute().Subrouter()
	authed.Use(s.requireUser)
	authed.HandleFunc("/users/me", s.handleMe).Methods(http.MethodGet)
	authed.HandleFunc("/files", s.handleListFiles).Methods(http.MethodGet)
	authed.HandleFunc("/files/", s.handleListFiles).Methods(http.MethodGet)
	authed.HandleFunc("/files/upload", s.handleUpload).Methods(http.MethodPost)
	authed.HandleFunc("/files/{id:[0-9]+}/download", s.handleDownload).Methods(http.MethodGet)
	authed.HandleFunc("/files/{id:[0-9]+}", s.handleDelete).Methods(http.MethodDelete)

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug(r.Context(), "stub request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Header.Get(common.RequestIDHeaderName),
			"took", time.Since(start).String(),
		)
	})
}

// FileCount reports how many files are stored, across all users.
func (s *Server) FileCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

func (s *Server) filesOf(ownerID int64) []*storedFile {
	out := make([]*storedFile, 0)
	for _, f := range s.files {
		if f.OwnerID == ownerID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
