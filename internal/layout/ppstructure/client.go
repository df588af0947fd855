// Package ppstructure talks to a PaddleOCR PP-Structure inference backend.
//
// The model itself runs out of process; this client ships each rendered page
// as a base64 PNG and decodes the region list the backend returns.
package ppstructure

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/voici5986/lumina-layout/internal/layout"
	"github.com/voici5986/lumina-layout/internal/logx"
)

// Name is the canonical engine name.
const Name = "pp-structure"

// Config configures a Client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// HTTPClient overrides the transport; nil uses a client with Timeout.
	HTTPClient *http.Client
}

// Client implements layout.Engine against a PP-Structure backend.
type Client struct {
	cfg  Config
	http *http.Client
}

// New returns a Client for cfg.
func New(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, http: hc}
}

func (c *Client) Name() string { return Name }

type predictRequest struct {
	Image    string `json:"image"`
	Layout   bool   `json:"layout"`
	Table    bool   `json:"table"`
	OCR      bool   `json:"ocr"`
	Language string `json:"lang,omitempty"`
}

type predictResponse struct {
	Regions []wireRegion `json:"regions"`
}

type wireRegion struct {
	Type  string          `json:"type"`
	BBox  []float64       `json:"bbox"`
	Score float64         `json:"score"`
	Res   json.RawMessage `json:"res"`
}

// Analyze posts the page image to {base}/predict.
func (c *Client) Analyze(ctx context.Context, page layout.PageImage, opts layout.Options) ([]layout.Region, error) {
	img, err := os.ReadFile(page.Path)
	if err != nil {
		return nil, fmt.Errorf("read page image: %w", err)
	}
	body, err := json.Marshal(predictRequest{
		Image:    base64.StdEncoding.EncodeToString(img),
		Layout:   opts.Layout,
		Table:    opts.Table,
		OCR:      opts.OCR,
		Language: opts.Language,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pp-structure request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pp-structure status %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}
	var pr predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode pp-structure response: %w", err)
	}
	regions := make([]layout.Region, 0, len(pr.Regions))
	for _, wr := range pr.Regions {
		regions = append(regions, decodeRegion(wr))
	}
	logx.Log.Debug().Int("page", page.Index).Int("regions", len(regions)).Msg("pp-structure page analysed")
	return regions, nil
}

// decodeRegion interprets res, which PP-Structure shapes differently per
// region type: an object for tables, a list of recognised lines for text.
func decodeRegion(wr wireRegion) layout.Region {
	r := layout.Region{Type: wr.Type, BBox: wr.BBox, Score: wr.Score}
	raw := bytes.TrimSpace(wr.Res)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return r
	}
	switch raw[0] {
	case '{':
		var obj struct {
			Text string `json:"text"`
			HTML string `json:"html"`
		}
		if err := json.Unmarshal(raw, &obj); err == nil {
			r.Text = obj.Text
			r.HTML = obj.HTML
		}
		if r.Text == "" && r.HTML == "" {
			r.Raw = string(raw)
		}
	case '[':
		var lines []struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(raw, &lines); err == nil {
			parts := make([]string, 0, len(lines))
			for _, l := range lines {
				if l.Text != "" {
					parts = append(parts, l.Text)
				}
			}
			r.Text = strings.Join(parts, "\n")
		} else {
			r.Raw = string(raw)
		}
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			r.Text = s
		}
	default:
		r.Raw = string(raw)
	}
	return r
}

// Probe checks {base}/health.
func (c *Client) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	c.authorize(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("status %s", resp.Status)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
}
