package web

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"inscraper/internal/logger"
	"inscraper/internal/output"
)

type runPayload struct {
	URL string `json:"url"`
}

type row struct {
	Link        string `json:"link"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type runResponse struct {
	RunID      string `json:"run_id"`
	Ok         bool   `json:"ok"`
	Message    string `json:"message"`
	OutputPath string `json:"output_path,omitempty"`
	StartedAt  string `json:"started_at,omitempty"`
	EndedAt    string `json:"ended_at,omitempty"`
	Results    []row  `json:"results,omitempty"`
}

type streamEvent struct {
	Type string `json:"type"` // "log" | "done"
	Msg  string `json:"msg,omitempty"`
	Data any    `json:"data,omitempty"`
}

// eventWriter serialises NDJSON events from several goroutines.
type eventWriter struct {
	mu sync.Mutex
	c  *gin.Context
}

func (e *eventWriter) write(ev streamEvent) {
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	_, _ = e.c.Writer.Write(append(b, '\n'))
	e.c.Writer.Flush()
}

func (e *eventWriter) log(format string, args ...any) {
	e.write(streamEvent{Type: "log", Msg: fmt.Sprintf(format, args...)})
}

func (e *eventWriter) done(resp runResponse) {
	e.write(streamEvent{Type: "done", Data: resp})
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := pageTmpl.Execute(c.Writer, nil); err != nil {
		_ = c.Error(err)
	}
}

func (s *Server) handleDownload(c *gin.Context) {
	if _, err := os.Stat(s.cfg.OutputPath); err != nil {
		c.String(http.StatusNotFound, "no results yet")
		return
	}
	c.FileAttachment(s.cfg.OutputPath, filepath.Base(s.cfg.OutputPath))
}

// validTarget accepts absolute http(s) URLs only.
func validTarget(raw string) bool {
	u, err := url.ParseRequestURI(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (s *Server) handleRun(c *gin.Context) {
	ctx := c.Request.Context()
	c.Header("Content-Type", "application/x-ndjson; charset=utf-8")
	c.Header("X-Accel-Buffering", "no")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)

	runID := uuid.NewString()
	ev := &eventWriter{c: c}
	log := s.log.With(logger.String("run_id", runID))

	var p runPayload
	if err := json.NewDecoder(c.Request.Body).Decode(&p); err != nil {
		ev.log("invalid payload: %v", err)
		ev.done(runResponse{RunID: runID, Message: "invalid payload"})
		return
	}
	if !validTarget(p.URL) {
		ev.log("Enter the company People page URL, e.g. https://www.linkedin.com/company/<name>/people/")
		ev.done(runResponse{RunID: runID, Message: "missing or invalid url"})
		return
	}
	target := strings.TrimSpace(p.URL)
	if !s.running.CompareAndSwap(false, true) {
		ev.log("A run is already in progress; wait for it to finish.")
		ev.done(runResponse{RunID: runID, Message: "run already in progress"})
		return
	}
	defer s.running.Store(false)

	start := time.Now()
	log.Info("Starting run", logger.String("url", target))
	ev.log("Starting inscraper for %s ...", target)

	cmd := s.cfg.Command(ctx, target)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		ev.log("Failed to start: %v", err)
		ev.done(runResponse{RunID: runID, Message: err.Error(), StartedAt: start.Format(time.RFC3339)})
		return
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		ev.log("Failed to start: %v", err)
		ev.done(runResponse{RunID: runID, Message: err.Error(), StartedAt: start.Format(time.RFC3339)})
		return
	}
	if err := cmd.Start(); err != nil {
		ev.log("Failed to start: %v", err)
		ev.done(runResponse{RunID: runID, Message: err.Error(), StartedAt: start.Format(time.RFC3339)})
		return
	}

	var wg sync.WaitGroup
	for _, r := range []io.Reader{stdout, stderr} {
		wg.Add(1)
		go func(r io.Reader) {
			defer wg.Done()
			sc := bufio.NewScanner(r)
			for sc.Scan() {
				ev.log("%s", strings.TrimRight(sc.Text(), "\r"))
			}
		}(r)
	}
	// Pipes must be drained before Wait closes them.
	wg.Wait()
	waitErr := cmd.Wait()

	resp := runResponse{
		RunID:     runID,
		Ok:        waitErr == nil,
		Message:   "ok",
		StartedAt: start.Format(time.RFC3339),
		EndedAt:   time.Now().Format(time.RFC3339),
	}
	if waitErr != nil {
		resp.Message = waitErr.Error()
		log.Warn("Run finished with error", logger.Error(waitErr))
	}

	// Only preview a file this run wrote.
	if st, err := os.Stat(s.cfg.OutputPath); err == nil && !st.ModTime().Before(start.Truncate(time.Second)) {
		resp.OutputPath = s.cfg.OutputPath
		recs, err := output.ReadLimited(s.cfg.OutputPath, previewLimit)
		if err != nil {
			ev.log("Warning: could not read results: %v", err)
		}
		for _, r := range recs {
			resp.Results = append(resp.Results, row{Link: r.Link, Name: r.Name, Description: r.Description})
		}
	}
	ev.done(resp)
}
