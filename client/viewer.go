// Package client implements a calendar viewer that keeps a local copy of
// resolved availability. Pull is the source of truth; pushed events only
// patch the copy between pulls.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"venuebook/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Record is one date as the viewer renders it.
type Record struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
	Price     int64  `json:"price"`
}

// Viewer mirrors the server's resolved calendar for a window of dates.
// All state behind mu; safe for a render loop and the subscription
// goroutine to share.
type Viewer struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger

	mu       sync.Mutex
	window   []string
	records  map[string]Record
	inFlight map[string]bool
}

// NewViewer builds a viewer for baseURL. minInterval throttles pulls so a
// burst of push events cannot stampede the resolve endpoint.
func NewViewer(baseURL string, minInterval time.Duration, logger *zap.Logger) *Viewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Viewer{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 10 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(minInterval), 1),
		logger:   logger,
		records:  make(map[string]Record),
		inFlight: make(map[string]bool),
	}
}

// SetWindow replaces the set of dates the viewer watches, in wire format.
func (v *Viewer) SetWindow(dates []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.window = append([]string(nil), dates...)
}

// Pull re-resolves the whole window and replaces local state. Anything the
// viewer optimistically marked in flight is discarded; the server answer
// wins.
func (v *Viewer) Pull(ctx context.Context) error {
	if err := v.limiter.Wait(ctx); err != nil {
		return err
	}

	v.mu.Lock()
	window := append([]string(nil), v.window...)
	v.mu.Unlock()
	if len(window) == 0 {
		return nil
	}

	body, err := json.Marshal(map[string][]string{"dates": window})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		v.baseURL+"/api/calendar/resolve", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("resolve returned status %d", resp.StatusCode)
	}

	var records []Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.records = make(map[string]Record, len(records))
	for _, rec := range records {
		v.records[rec.Date] = rec
	}
	v.inFlight = make(map[string]bool)
	return nil
}

// Poll pulls on a fixed interval until ctx is cancelled. This is the
// correctness path; the websocket subscription only lowers latency.
func (v *Viewer) Poll(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := v.Pull(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			v.logger.Warn("calendar pull failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Subscribe connects to the push channel and patches local state from
// events until ctx is cancelled or the connection drops. A dropped
// connection is not fatal; polling still converges.
func (v *Viewer) Subscribe(ctx context.Context, wsURL string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		var ev models.AvailabilityEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			v.logger.Warn("dropping malformed push event", zap.Error(err))
			continue
		}
		v.Apply(ctx, ev)
	}
}

// Apply patches local state from one push event. A rules-changed event
// carries no date, so the only correct reaction is a full re-pull.
func (v *Viewer) Apply(ctx context.Context, ev models.AvailabilityEvent) {
	if ev.RulesChanged {
		if err := v.Pull(ctx); err != nil && ctx.Err() == nil {
			v.logger.Warn("re-pull after rules change failed", zap.Error(err))
		}
		return
	}
	if ev.Date == "" {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, watched := v.records[ev.Date]; !watched {
		return
	}
	v.records[ev.Date] = Record{Date: ev.Date, Available: ev.IsAvailable, Price: ev.Price}
	delete(v.inFlight, ev.Date)
}

// MarkInFlight greys a date out locally the moment the user submits a
// booking, before the server answers.
func (v *Viewer) MarkInFlight(date string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.inFlight[date] = true
}

// Record returns a date as it should render, with the in-flight overlay
// applied.
func (v *Viewer) Record(date string) (Record, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	rec, ok := v.records[date]
	if !ok {
		return Record{}, false
	}
	if v.inFlight[date] {
		rec.Available = false
	}
	return rec, true
}

// Records returns the whole window in window order.
func (v *Viewer) Records() []Record {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Record, 0, len(v.window))
	for _, date := range v.window {
		rec, ok := v.records[date]
		if !ok {
			continue
		}
		if v.inFlight[date] {
			rec.Available = false
		}
		out = append(out, rec)
	}
	return out
}
