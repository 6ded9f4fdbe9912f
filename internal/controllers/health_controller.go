package controllers

import (
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"lifewrapped/internal/pipeline"
	"lifewrapped/internal/services"
	"lifewrapped/internal/summarize"
)

type HealthController struct {
	journal   *services.JournalService
	coord     *pipeline.Coordinator
	summarize *summarize.Coordinator
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Recording     bool    `json:"recording"`
	Sessions      int     `json:"sessions"`
	ActiveEngine  string  `json:"active_engine"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	counts, err := hc.journal.Counts()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Recording:     hc.coord.Status().Recording,
		Sessions:      counts.Sessions,
		ActiveEngine:  string(hc.summarize.ActiveTier(r.Context())),
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(journal *services.JournalService, coord *pipeline.Coordinator,
	sum *summarize.Coordinator) *HealthController {
	return &HealthController{
		journal:   journal,
		coord:     coord,
		summarize: sum,
		startTime: time.Now(),
	}
}
