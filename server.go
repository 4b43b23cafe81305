package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/chalskim/adSTTS/extra"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// maxUpload caps multipart bodies on /transcribe.
const maxUpload = 512 << 20

// Server exposes transcription and synthesis over http for other local
// programs. Heavy requests run one at a time.
type Server struct {
	slot chan struct{}
}

func NewServer() *Server {
	return &Server{slot: make(chan struct{}, 1)}
}

func (srv *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", pingHandler)
	mux.HandleFunc("GET /jobs", jobsHandler)
	mux.HandleFunc("GET /languages", languagesHandler)
	mux.HandleFunc("POST /transcribe", srv.transcribeHandler)
	mux.HandleFunc("POST /tts", srv.ttsHandler)
	return mux
}

// ListenToRequests blocks until ctx is cancelled or the listener fails.
func (srv *Server) ListenToRequests(ctx context.Context, addr string) error {
	// no WriteTimeout: transcribing a long file outlives any fixed limit
	server := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       time.Minute,
	}
	errCh := make(chan error, 1)
	go func() {
		fmt.Println("Listening on", server.Addr)
		logger.Info("server listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// acquire waits for the single work slot or gives up with the request.
func (srv *Server) acquire(ctx context.Context) bool {
	select {
	case srv.slot <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

func (srv *Server) release() {
	<-srv.slot
}

func httpError(w http.ResponseWriter, msg string, code int) {
	logger.Warn("request failed", "status", code, "error", msg)
	http.Error(w, msg, code)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to write json", "error", err)
	}
}

func pingHandler(w http.ResponseWriter, req *http.Request) {
	if _, err := w.Write([]byte("pong")); err != nil {
		logger.Error("server ping", "error", err)
	}
}

func jobsHandler(w http.ResponseWriter, req *http.Request) {
	limit := 20
	if s := req.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			httpError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	jobs, err := store.ListJobs(limit)
	if err != nil {
		httpError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, jobs)
}

func languagesHandler(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, extra.LanguageNames())
}

type transcribeResponse struct {
	Text  string `json:"text"`
	Saved string `json:"saved,omitempty"`
}

// transcribeHandler takes a multipart "file" field and answers with the
// transcript as json. Pass save=true to also keep the text file.
func (srv *Server) transcribeHandler(w http.ResponseWriter, req *http.Request) {
	req.Body = http.MaxBytesReader(w, req.Body, maxUpload)
	file, header, err := req.FormFile("file")
	if err != nil {
		httpError(w, "missing audio file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()
	// keep the original name so saved transcripts and history stay readable
	dir, err := os.MkdirTemp("", "adstts-upload-")
	if err != nil {
		httpError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(dir)
	name := filepath.Base(header.Filename)
	if name == "." || name == string(filepath.Separator) {
		name = "upload.wav"
	}
	path := filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		httpError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_, err = io.Copy(dst, file)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		httpError(w, "failed to store upload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !srv.acquire(req.Context()) {
		return
	}
	defer srv.release()
	save := req.FormValue("save") == "true"
	text, saved, err := transcribeFile(req.Context(), io.Discard, path, save)
	if err != nil {
		httpError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, transcribeResponse{Text: text, Saved: saved})
}

type ttsRequest struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Speaker  string  `json:"speaker"`
	Speed    float32 `json:"speed"`
	Format   string  `json:"format"` // wav or mp3
}

// ttsHandler synthesizes the posted text and streams the audio back.
func (srv *Server) ttsHandler(w http.ResponseWriter, req *http.Request) {
	var body ttsRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		httpError(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	ext := ".wav"
	switch body.Format {
	case "", "wav":
	case "mp3":
		ext = ".mp3"
	default:
		httpError(w, "format must be wav or mp3", http.StatusBadRequest)
		return
	}
	dir, err := os.MkdirTemp("", "adstts-tts-")
	if err != nil {
		httpError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(dir)
	out := filepath.Join(dir, "speech"+ext)
	if !srv.acquire(req.Context()) {
		return
	}
	defer srv.release()
	input := "http_" + uuid.NewString()[:8]
	engine, err := synthesize(req.Context(), io.Discard, input, extra.Request{
		Text:     body.Text,
		Language: body.Language,
		Speaker:  body.Speaker,
		Speed:    body.Speed,
		Output:   out,
	})
	switch {
	case errors.Is(err, extra.ErrEmptyText), errors.Is(err, extra.ErrInvalidSpeed), errors.Is(err, extra.ErrUnsupportedLanguage):
		httpError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		httpError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("X-TTS-Engine", engine)
	http.ServeFile(w, req, out)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve transcription and tts over http",
	Long: `Endpoints:
  GET  /ping
  GET  /jobs?limit=N
  GET  /languages
  POST /transcribe   multipart "file", optional save=true
  POST /tts          json {"text", "language", "speaker", "speed", "format"}`,
	Example: `  adstts serve --port 8765
  curl -F file=@meeting.wav localhost:8765/transcribe`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetInt("port")
		ctx, stop := signalContext()
		defer stop()
		return NewServer().ListenToRequests(ctx, fmt.Sprintf("%s:%d", host, port))
	},
}

func init() {
	serveCmd.Flags().String("host", "localhost", "address to bind")
	serveCmd.Flags().IntP("port", "p", 8765, "port to listen on")
	rootCmd.AddCommand(serveCmd)
}
