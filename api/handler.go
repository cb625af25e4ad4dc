// Package api exposes the computed snapshot to the dashboard as a read-only
// JSON surface.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/mrapplexz/hack-digital-ambulance/core/snapshot"
	"github.com/mrapplexz/hack-digital-ambulance/core/substation"
)

// NewHandler returns the HTTP handler serving the snapshot views:
//
//	GET /api/substations
//	GET /api/predictions/daily?date=YYYY-MM-DD
//	GET /api/predictions/hourly?date=YYYY-MM-DD&hour=N
//	GET /api/explain?substation=NAME&time=RFC3339
func NewHandler(snap *snapshot.Snapshot, subs *substation.Table) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/substations", getOnly(handleSubstations(subs)))
	mux.Handle("/api/predictions/daily", getOnly(handleDaily(snap)))
	mux.Handle("/api/predictions/hourly", getOnly(handleHourly(snap)))
	mux.Handle("/api/explain", getOnly(handleExplain(snap)))
	return mux
}

func getOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type substationEntry struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

func handleSubstations(subs *substation.Table) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out := make([]substationEntry, 0, subs.Len())
		for _, e := range subs.Entries() {
			out = append(out, substationEntry{Name: e.Name, Lat: e.Lat, Lon: e.Lon})
		}
		writeJSON(w, out)
	})
}

type dailyRow struct {
	Date       string  `json:"date"`
	Substation string  `json:"substation"`
	Calls      int     `json:"calls"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

func handleDaily(snap *snapshot.Snapshot) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var filter *time.Time
		if d := r.URL.Query().Get("date"); d != "" {
			t, err := time.Parse("2006-01-02", d)
			if err != nil {
				http.Error(w, "bad date: "+err.Error(), http.StatusBadRequest)
				return
			}
			filter = &t
		}
		out := make([]dailyRow, 0)
		for _, row := range snap.Daily {
			if filter != nil && !sameDate(row.Date, *filter) {
				continue
			}
			out = append(out, dailyRow{
				Date:       row.Date.Format("2006-01-02"),
				Substation: row.Substation,
				Calls:      row.Calls,
				Lat:        row.Lat,
				Lon:        row.Lon,
			})
		}
		writeJSON(w, out)
	})
}

type hourlyRow struct {
	Time       time.Time `json:"time"`
	Substation string    `json:"substation"`
	Calls      int       `json:"calls"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
}

func handleHourly(snap *snapshot.Snapshot) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var date *time.Time
		hour := -1
		q := r.URL.Query()
		if d := q.Get("date"); d != "" {
			t, err := time.Parse("2006-01-02", d)
			if err != nil {
				http.Error(w, "bad date: "+err.Error(), http.StatusBadRequest)
				return
			}
			date = &t
		}
		if h := q.Get("hour"); h != "" {
			parsed, err := strconv.Atoi(h)
			if err != nil || parsed < 0 || parsed > 23 {
				http.Error(w, "bad hour", http.StatusBadRequest)
				return
			}
			hour = parsed
		}
		out := make([]hourlyRow, 0)
		for _, row := range snap.Hourly {
			if date != nil && !sameDate(row.Time, *date) {
				continue
			}
			if hour >= 0 && row.Time.Hour() != hour {
				continue
			}
			out = append(out, hourlyRow{Time: row.Time, Substation: row.Substation, Calls: row.Calls, Lat: row.Lat, Lon: row.Lon})
		}
		writeJSON(w, out)
	})
}

func handleExplain(snap *snapshot.Snapshot) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		name := q.Get("substation")
		if name == "" {
			http.Error(w, "substation is required", http.StatusBadRequest)
			return
		}
		ts, err := time.Parse(time.RFC3339, q.Get("time"))
		if err != nil {
			http.Error(w, "bad time: "+err.Error(), http.StatusBadRequest)
			return
		}
		ex, err := snap.Explain(name, ts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, ex)
	})
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
