package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	sse "github.com/alexandrevicenzi/go-sse"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mastercactapus/tubecut/coord"
	"github.com/mastercactapus/tubecut/gcode"
	"github.com/mastercactapus/tubecut/machine"
)

const (
	statusChannel = "/events/status"
	outputChannel = "/events/output"

	maxBodySize = 1 << 20
)

type api struct {
	http.Handler
	m       *machine.Machine
	cut     machine.CutOptions
	log     *zap.Logger
	sse     *sse.Server
	console *consoleHub
}

// newAPI returns the HTTP surface for m. Cut requests start from defaults.
func newAPI(m *machine.Machine, defaults machine.CutOptions, log *zap.Logger) *api {
	sseLog, err := zap.NewStdLogAt(log.Named("sse"), zap.DebugLevel)
	if err != nil {
		sseLog = zap.NewStdLog(zap.NewNop())
	}

	r := mux.NewRouter()
	a := &api{
		Handler: r,
		m:       m,
		cut:     defaults,
		log:     log,
		sse:     sse.NewServer(&sse.Options{Logger: sseLog}),
		console: newConsoleHub(log.Named("console")),
	}

	r.Use(a.logRequests)

	r.HandleFunc("/api/command", a.command).Methods("POST")
	r.HandleFunc("/api/command/low", a.commandLow).Methods("POST")
	r.HandleFunc("/api/program", a.program).Methods("POST")
	r.HandleFunc("/api/home", a.home).Methods("POST")
	r.HandleFunc("/api/status", a.status).Methods("GET")
	r.HandleFunc("/api/status/poll", a.poll).Methods("POST")
	r.HandleFunc("/api/jog", a.jog).Methods("POST")
	r.HandleFunc("/api/cut", a.runCut).Methods("POST")
	r.HandleFunc("/api/cut/program", a.cutProgram).Methods("POST")

	r.PathPrefix("/events/").Handler(a.sse)
	r.HandleFunc("/ws/console", func(w http.ResponseWriter, req *http.Request) {
		a.console.serve(a.m, w, req)
	})
	r.Handle("/metrics", promhttp.Handler())

	return a
}

func (a *api) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		a.log.Debug("request",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.String("remote_addr", req.RemoteAddr),
		)
		next.ServeHTTP(w, req)
	})
}

// run forwards status reports and controller output to event streams and
// consoles until ctx is done.
func (a *api) run(ctx context.Context) error {
	defer a.console.closeAll()
	defer a.sse.Shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil
		case stat := <-a.m.Updates():
			data, err := json.Marshal(stat)
			if err != nil {
				a.log.Error("marshal status", zap.Error(err))
				continue
			}
			a.sse.SendMessage(statusChannel, sse.SimpleMessage(string(data)))
		case line := <-a.m.Output():
			a.sse.SendMessage(outputChannel, sse.SimpleMessage(line))
			a.console.broadcast(line)
		}
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("encode response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(append(data, '\n'))
}

func readText(w http.ResponseWriter, req *http.Request) (string, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBodySize))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return string(data), true
}

func (a *api) command(w http.ResponseWriter, req *http.Request) {
	body, ok := readText(w, req)
	if !ok {
		return
	}
	line := strings.TrimSpace(body)
	if line == "" || strings.ContainsAny(line, "\r\n") {
		http.Error(w, "expected a single line", http.StatusBadRequest)
		return
	}
	a.m.Send(line)
	w.WriteHeader(http.StatusAccepted)
}

func (a *api) commandLow(w http.ResponseWriter, req *http.Request) {
	body, ok := readText(w, req)
	if !ok {
		return
	}
	line := strings.TrimSpace(body)
	if line == "" || strings.ContainsAny(line, "\r\n") {
		http.Error(w, "expected a single line", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"queued": a.m.SendLowPriority(line)})
}

func (a *api) program(w http.ResponseWriter, req *http.Request) {
	body, ok := readText(w, req)
	if !ok {
		return
	}
	id, n := a.m.RunText(body)
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"job": id, "lines": n})
}

func (a *api) home(w http.ResponseWriter, req *http.Request) {
	a.m.Home()
	w.WriteHeader(http.StatusAccepted)
}

func (a *api) status(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, a.m.Status())
}

func (a *api) poll(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"queued": a.m.PollStatus()})
}

func (a *api) jog(w http.ResponseWriter, req *http.Request) {
	var d coord.Point
	err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodySize)).Decode(&d)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !isFinite(d.X) || !isFinite(d.Y) {
		http.Error(w, "jog distance must be finite", http.StatusBadRequest)
		return
	}
	a.m.Jog(d.X, d.Y)
	w.WriteHeader(http.StatusAccepted)
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// decodeCut reads cut options from the body, on top of the configured defaults.
func (a *api) decodeCut(w http.ResponseWriter, req *http.Request) (machine.CutOptions, bool) {
	opt := a.cut
	err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodySize)).Decode(&opt)
	if err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return opt, false
	}
	err = opt.Validate()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return opt, false
	}
	return opt, true
}

func (a *api) runCut(w http.ResponseWriter, req *http.Request) {
	opt, ok := a.decodeCut(w, req)
	if !ok {
		return
	}
	id, err := a.m.Cut(opt)
	if err != nil {
		a.log.Error("cut", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"job": id, "end": opt.EndPosition()})
}

type cutPreview struct {
	Program string         `json:"program"`
	End     coord.Point    `json:"end"`
	Trace   *gcode.Summary `json:"trace"`
}

func (a *api) cutProgram(w http.ResponseWriter, req *http.Request) {
	opt, ok := a.decodeCut(w, req)
	if !ok {
		return
	}
	p, err := opt.Program()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// trace from where the toolhead is now
	sum, err := gcode.TraceFrom(p.Reader(), a.m.Status().MPos)
	if err != nil {
		a.log.Error("trace cut program", zap.Error(err))
		http.Error(w, fmt.Sprintf("trace: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cutPreview{Program: p.String(), End: opt.EndPosition(), Trace: sum})
}
