package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/soundvault/artist-ingest/pkg/broadcast"
	"github.com/soundvault/artist-ingest/pkg/ingest"
	"github.com/soundvault/artist-ingest/pkg/scheduler"
	"github.com/soundvault/artist-ingest/pkg/task"
)

type server struct {
	service     *ingest.Service
	sched       *scheduler.Scheduler
	statusStore *task.StatusStore
	broadcaster *broadcast.Broadcaster
	upgrader    websocket.Upgrader
	logger      zerolog.Logger
}

func newServer(svc *ingest.Service, sched *scheduler.Scheduler, statusStore *task.StatusStore, broadcaster *broadcast.Broadcaster) *server {
	return &server{
		service:     svc,
		sched:       sched,
		statusStore: statusStore,
		broadcaster: broadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: log.With().Str("component", "server").Logger(),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()

	// Crawl submissions
	mux.HandleFunc("GET /crawl/artist", s.handleCrawlArtist)
	mux.HandleFunc("GET /crawl/{artistID}/albums", s.submitHandler(task.KindAlbums))
	mux.HandleFunc("GET /crawl/{artistID}/songs", s.submitHandler(task.KindSongs))
	mux.HandleFunc("GET /crawl/{artistID}/videos", s.submitHandler(task.KindVideos))
	mux.HandleFunc("GET /crawl/{artistID}/photos", s.submitHandler(task.KindPhotos))
	mux.HandleFunc("GET /crawl/{artistID}/comments", s.submitHandler(task.KindComments))

	// Task status
	mux.HandleFunc("GET /tasks/{taskID}", s.handleTaskStatus)
	mux.HandleFunc("GET /ws/task_status", s.handleTaskStatusWS)

	// Ingested data
	mux.HandleFunc("GET /artists", s.handleArtists)
	mux.HandleFunc("GET /artists/{artistID}", s.handleArtist)
	mux.HandleFunc("GET /artists/{artistID}/albums", s.handleArtistAlbums)
	mux.HandleFunc("GET /artists/{artistID}/songs", s.handleArtistSongs)
	mux.HandleFunc("GET /artists/{artistID}/videos", s.handleArtistVideos)
	mux.HandleFunc("GET /artists/{artistID}/photos", s.handleArtistPhotos)
	mux.HandleFunc("GET /artists/{artistID}/comments", s.handleArtistComments)
	mux.HandleFunc("GET /artists/{artistID}/comments/latest", s.handleLatestComments)
	mux.HandleFunc("GET /albums/{albumID}/comments", s.handleAlbumComments)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", s.handleHealth)

	return mux
}

// submit builds a task for the given kind and argument, enqueues it, and
// replies with the task id. Re-submitting an identical request enqueues a
// fresh run under the same id.
func (s *server) submit(w http.ResponseWriter, kind task.Kind, arg string) {
	t, err := s.service.NewTask(kind, arg)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := s.sched.Submit(t)
	s.logger.Info().Str("task_id", id).Str("kind", string(kind)).Msg("Task submitted")
	s.writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "task queued",
		"task_id": id,
	})
}

func (s *server) handleCrawlArtist(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		s.writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}
	s.submit(w, task.KindArtistInfo, rawURL)
}

func (s *server) submitHandler(kind task.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		artistID := r.PathValue("artistID")
		if artistID == "" {
			s.writeError(w, http.StatusBadRequest, "missing artist id")
			return
		}
		s.submit(w, kind, artistID)
	}
}

func (s *server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("taskID")
	status, ok := s.statusStore.Get(taskID)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, task.Event{TaskID: taskID, Status: task.StatusNotFound})
		return
	}
	s.writeJSON(w, http.StatusOK, task.Event{TaskID: taskID, Status: status})
}

// handleTaskStatusWS serves the status push channel. The client may send a
// task id at any time to get an immediate status snapshot; every status
// change in the system is pushed as it happens.
func (s *server) handleTaskStatusWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	sub := s.broadcaster.Subscribe()

	// WriteJSON is not safe for concurrent use; the push goroutine and the
	// query replies below share this mutex.
	var writeMu sync.Mutex

	pushDone := make(chan struct{})
	go func() {
		defer close(pushDone)
		for ev := range sub.Events() {
			writeMu.Lock()
			err := conn.WriteJSON(ev)
			writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		taskID := strings.TrimSpace(string(msg))
		if taskID == "" {
			continue
		}
		status, ok := s.statusStore.Get(taskID)
		if !ok {
			status = task.StatusNotFound
		}
		writeMu.Lock()
		werr := conn.WriteJSON(task.Event{TaskID: taskID, Status: status})
		writeMu.Unlock()
		if werr != nil {
			break
		}
	}

	s.broadcaster.Unsubscribe(sub)
	<-pushDone
}

func (s *server) handleArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := s.service.BringAllArtists(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, artists)
}

func (s *server) handleArtist(w http.ResponseWriter, r *http.Request) {
	artist, err := s.service.BringArtist(r.Context(), r.PathValue("artistID"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if artist == nil {
		s.writeError(w, http.StatusNotFound, "artist not found")
		return
	}
	s.writeJSON(w, http.StatusOK, artist)
}

func (s *server) handleArtistAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := s.service.BringAlbums(r.Context(), r.PathValue("artistID"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, albums)
}

func (s *server) handleArtistSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := s.service.BringSongs(r.Context(), r.PathValue("artistID"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, songs)
}

func (s *server) handleArtistVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := s.service.BringVideos(r.Context(), r.PathValue("artistID"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, videos)
}

func (s *server) handleArtistPhotos(w http.ResponseWriter, r *http.Request) {
	photos, err := s.service.BringPhotos(r.Context(), r.PathValue("artistID"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, photos)
}

func (s *server) handleArtistComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.service.BringArtistComments(r.Context(), r.PathValue("artistID"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, comments)
}

func (s *server) handleLatestComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.service.BringLatestComments(r.Context(), r.PathValue("artistID"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, comments)
}

func (s *server) handleAlbumComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.service.BringAlbumComments(r.Context(), r.PathValue("albumID"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, comments)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to encode response")
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
