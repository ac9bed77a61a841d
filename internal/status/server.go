package status

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/sleepymaid/sleepymaid/internal/handler"
)

const shutdownTimeout = 5 * time.Second

// CommandSource exposes the bound command table. *handler.CommandManager
// satisfies it.
type CommandSource interface {
	Records() []handler.Record
}

// Server serves the health and command table endpoints.
type Server struct {
	log  *slog.Logger
	http *http.Server
}

// NewServer creates a status server listening on addr.
func NewServer(addr string, commands CommandSource, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	return &Server{
		log: log,
		http: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(commands),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// NewRouter returns the status routes.
func NewRouter(commands CommandSource) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", health).Methods(http.MethodGet)
	r.HandleFunc("/commands", listCommands(commands)).Methods(http.MethodGet)
	return r
}

// Start listens in the background. Listen errors are returned directly.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}

	s.log.Info("started status server", "addr", ln.Addr().String())
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("status server stopped", "error", err)
		}
	}()
	return nil
}

// Stop shuts the server down, waiting up to five seconds for requests.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		s.log.Error("failed to shutdown status server", "error", err)
	}
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func listCommands(commands CommandSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		records := commands.Records()
		if records == nil {
			records = []handler.Record{}
		}
		writeJSON(w, records)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
