package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/ecosphere/internal/eco"
	"github.com/talgya/ecosphere/internal/persistence"
	"github.com/talgya/ecosphere/internal/species"
)

type fixture struct {
	eco    *eco.Ecosystem
	driver *eco.Driver
	server *Server
	ts     *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := persistence.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	e := eco.New(species.Builtin(), nil)
	d := eco.NewDriver(e)
	d.Interval = time.Millisecond

	s := New(e, d, db, 0, "secret")
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(d.Stop)

	return &fixture{eco: e, driver: d, server: s, ts: ts}
}

func (f *fixture) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(f.ts.URL+path, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeState(t *testing.T, resp *http.Response) stateResponse {
	t.Helper()
	defer resp.Body.Close()
	var state stateResponse
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return state
}

func TestCatalogEndpoint(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.ts.URL + "/api/v1/catalog")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Species []species.Species `json:"species"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Species) != 12 {
		t.Errorf("catalog has %d species, want 12", len(body.Species))
	}
}

func TestAddSpeciesEndpoint(t *testing.T) {
	f := newFixture(t)

	resp := f.postJSON(t, "/api/v1/species/add", speciesRequest{ID: "grass"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	state := decodeState(t, resp)
	if len(state.Species) != 1 || state.Species[0].ID != "grass" || state.Species[0].Population != 10 {
		t.Errorf("state after add = %+v", state.Species)
	}
	if state.Metrics.Stability != 100 {
		t.Errorf("stability = %d, want 100", state.Metrics.Stability)
	}
}

func TestAddUnknownSpeciesSuggests(t *testing.T) {
	f := newFixture(t)

	resp := f.postJSON(t, "/api/v1/species/add", speciesRequest{ID: "wulf"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), `did you mean "wolf"`) {
		t.Errorf("error body %q lacks suggestion", buf.String())
	}
}

func TestRemoveSpeciesEndpoint(t *testing.T) {
	f := newFixture(t)

	f.postJSON(t, "/api/v1/species/add", speciesRequest{ID: "rabbit"}).Body.Close()

	resp := f.postJSON(t, "/api/v1/species/remove", speciesRequest{ID: "rabbit"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	state := decodeState(t, resp)
	if len(state.Species) != 0 {
		t.Errorf("species not removed: %+v", state.Species)
	}

	resp = f.postJSON(t, "/api/v1/species/remove", speciesRequest{ID: "rabbit"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("removing absent species: status = %d, want 404", resp.StatusCode)
	}
}

func TestSimulationLifecycleOverHTTP(t *testing.T) {
	f := newFixture(t)

	f.postJSON(t, "/api/v1/species/add", speciesRequest{ID: "grass"}).Body.Close()

	resp := f.postJSON(t, "/api/v1/simulation/start", startRequest{Player: "ada"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d", resp.StatusCode)
	}

	// Mutations are rejected mid-run.
	resp = f.postJSON(t, "/api/v1/species/add", speciesRequest{ID: "rabbit"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict && f.eco.Phase() == eco.Running {
		t.Errorf("add during run: status = %d, want 409", resp.StatusCode)
	}

	// Wait for the run to finish and the result to land in the store.
	deadline := time.Now().Add(5 * time.Second)
	for f.eco.Phase() != eco.Complete {
		if time.Now().After(deadline) {
			t.Fatal("simulation did not complete")
		}
		time.Sleep(5 * time.Millisecond)
	}

	var rows struct {
		Runs []persistence.RunRow `json:"runs"`
	}
	for {
		r, err := http.Get(f.ts.URL + "/api/v1/leaderboard")
		if err != nil {
			t.Fatal(err)
		}
		err = json.NewDecoder(r.Body).Decode(&rows)
		r.Body.Close()
		if err != nil {
			t.Fatal(err)
		}
		if len(rows.Runs) > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("run never persisted")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if rows.Runs[0].Player != "ada" || rows.Runs[0].Score != 100 {
		t.Errorf("persisted run = %+v, want player ada score 100", rows.Runs[0])
	}
}

func TestResetRequiresBearerToken(t *testing.T) {
	f := newFixture(t)

	resp := f.postJSON(t, "/api/v1/simulation/reset", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated reset: status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPost, f.ts.URL+"/api/v1/simulation/reset", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("authenticated reset: status = %d, want 200", resp2.StatusCode)
	}
}

func TestStreamSendsInitialState(t *testing.T) {
	f := newFixture(t)

	f.postJSON(t, "/api/v1/species/add", speciesRequest{ID: "grass"}).Body.Close()

	url := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/api/v1/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame struct {
		Type  string        `json:"type"`
		State stateResponse `json:"state"`
	}
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read first frame: %v", err)
	}
	if frame.Type != "state" {
		t.Errorf("first frame type = %q, want state", frame.Type)
	}
	if len(frame.State.Species) != 1 {
		t.Errorf("initial state species = %+v", frame.State.Species)
	}
}

func TestStreamConnectDuringBroadcast(t *testing.T) {
	f := newFixture(t)

	// Broadcast continuously from another goroutine while clients join,
	// the way the driver publishes ticks as a late joiner arrives. The
	// conn only takes broadcast writes once the handler has finished its
	// initial state frame, so the first frame is always "state".
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				f.server.broadcast(map[string]any{"type": "tick"})
			}
		}
	}()

	url := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/api/v1/stream"
	for i := 0; i < 20; i++ {
		conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial %d: %v", i, err)
		}
		if resp != nil {
			resp.Body.Close()
		}
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var frame struct {
			Type string `json:"type"`
		}
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("read first frame on conn %d: %v", i, err)
		}
		if frame.Type != "state" {
			t.Errorf("conn %d first frame type = %q, want state", i, frame.Type)
		}
		conn.Close()
	}

	close(stop)
	wg.Wait()
}
