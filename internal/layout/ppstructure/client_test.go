package ppstructure

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/voici5986/lumina-layout/internal/layout"
)

func writePage(t *testing.T) layout.PageImage {
	t.Helper()
	p := filepath.Join(t.TempDir(), "page-1.png")
	if err := os.WriteFile(p, []byte("png-bytes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return layout.PageImage{Index: 1, Path: p, DPI: 200}
}

func TestAnalyze(t *testing.T) {
	var got predictRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"regions":[
			{"type":"title","bbox":[10,20,30,40],"score":0.9,"res":[{"text":"Hello"},{"text":"World"}]},
			{"type":"table","bbox":[1,2,3,4],"res":{"html":"<table></table>","cell_bbox":[]}},
			{"type":"figure","bbox":[5,6,7,8],"res":{"text":"Fig"}},
			{"type":"equation","bbox":[0,0,1,1],"res":"x^2"},
			{"type":"table","bbox":[0,0,1,1],"res":{"cells":[1]}},
			{"type":"header","bbox":[0,0,1,1],"res":null}
		]}`))
	}))
	defer ts.Close()

	c := New(Config{BaseURL: ts.URL + "/", APIKey: "secret", Timeout: time.Second})
	page := writePage(t)
	regions, err := c.Analyze(context.Background(), page, layout.Options{Layout: true, Table: false, OCR: true, Language: "ch"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	img, _ := base64.StdEncoding.DecodeString(got.Image)
	if string(img) != "png-bytes" || !got.Layout || got.Table || !got.OCR || got.Language != "ch" {
		t.Fatalf("unexpected request: %+v", got)
	}
	if len(regions) != 6 {
		t.Fatalf("regions: %d", len(regions))
	}
	if regions[0].Text != "Hello\nWorld" || regions[0].Score != 0.9 || regions[0].BBox[3] != 40 {
		t.Fatalf("title region: %+v", regions[0])
	}
	if regions[1].HTML != "<table></table>" {
		t.Fatalf("table region: %+v", regions[1])
	}
	if regions[2].Text != "Fig" {
		t.Fatalf("figure region: %+v", regions[2])
	}
	if regions[3].Text != "x^2" {
		t.Fatalf("equation region: %+v", regions[3])
	}
	if regions[4].Raw != `{"cells":[1]}` {
		t.Fatalf("raw table region: %+v", regions[4])
	}
	if regions[5].Text != "" || regions[5].Raw != "" {
		t.Fatalf("empty region: %+v", regions[5])
	}
}

func TestAnalyzeBackendError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c := New(Config{BaseURL: ts.URL})
	_, err := c.Analyze(context.Background(), writePage(t), layout.Options{})
	if err == nil || !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestAnalyzeMissingImage(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:0"})
	_, err := c.Analyze(context.Background(), layout.PageImage{Path: filepath.Join(t.TempDir(), "none.png")}, layout.Options{})
	if err == nil {
		t.Fatalf("expected read error")
	}
}

func TestProbe(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer ts.Close()

	c := New(Config{BaseURL: ts.URL, Timeout: time.Second})
	if c.Name() != Name {
		t.Fatalf("name: %s", c.Name())
	}
	if err := c.Probe(context.Background()); err != nil {
		t.Fatalf("probe: %v", err)
	}
	healthy.Store(false)
	if err := c.Probe(context.Background()); err == nil {
		t.Fatalf("expected probe failure")
	}
}

func TestProbeSendsAPIKey(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer ts.Close()

	c := New(Config{BaseURL: ts.URL, APIKey: "secret", Timeout: time.Second})
	if err := c.Probe(context.Background()); err != nil {
		t.Fatalf("probe: %v", err)
	}
	anon := New(Config{BaseURL: ts.URL, Timeout: time.Second})
	if err := anon.Probe(context.Background()); err == nil {
		t.Fatalf("expected unauthorized probe to fail")
	}
}
