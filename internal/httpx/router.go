package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	mdb "Stratus/internal/mongo"
)

// NewRouter wires the read-only API: liveness, last run summary, and a paged
// view over the ingested collection.
func NewRouter(mc *mdb.Client, obs *mdb.Observations, status *RunStatus) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		type resp struct {
			Status string    `json:"status"`
			Time   time.Time `json:"time"`
			DB     string    `json:"db"`
		}
		writeJSON(w, resp{
			Status: "ok",
			Time:   time.Now().UTC(),
			DB:     mc.DB.Name(),
		})
	})

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		sum, finished, ok := status.Last()
		if !ok {
			writeJSON(w, map[string]any{"ran": false})
			return
		}
		writeJSON(w, map[string]any{
			"ran":         true,
			"finished_at": finished,
			"summary":     sum,
		})
	})

	mux.HandleFunc("/observations", observationsListHandler(obs))

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
