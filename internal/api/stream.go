package api

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/voici5986/lumina-layout/internal/layout"
	"github.com/voici5986/lumina-layout/internal/logx"
)

type streamMessage struct {
	Type      string       `json:"type"`
	Page      *layout.Page `json:"page,omitempty"`
	PageCount int          `json:"pageCount,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// Stream handles GET /parse/stream. The client sends one parse request and
// receives a "page" message per page followed by "done" or "error".
func (a *API) Stream(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{}
	if len(a.AllowedOrigins) == 0 || slices.Contains(a.AllowedOrigins, "*") {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = a.AllowedOrigins
	}
	c, err := websocket.Accept(w, r, opts)
	if err != nil {
		return
	}
	defer func() {
		_ = c.Close(websocket.StatusInternalError, "server error")
	}()

	ctx, cancel := a.parseContext(r.Context())
	defer cancel()

	_, data, err := c.Read(ctx)
	if err != nil {
		return
	}
	req, err := decodeParseRequest(data)
	if err != nil {
		a.sendError(ctx, c, err)
		return
	}

	var writeErr error
	st, err := a.Parser.Parse(ctx, req, func(p layout.Page) {
		if writeErr != nil {
			return
		}
		if writeErr = wsjson.Write(ctx, c, streamMessage{Type: "page", Page: &p}); writeErr != nil {
			cancel()
		}
	})
	if writeErr != nil {
		logx.Log.Debug().Err(writeErr).Msg("stream client gone")
		return
	}
	if err != nil {
		a.sendError(ctx, c, err)
		return
	}
	if err := wsjson.Write(ctx, c, streamMessage{Type: "done", PageCount: st.PageCount}); err != nil {
		return
	}
	_ = c.Close(websocket.StatusNormalClosure, "")
}

func (a *API) sendError(ctx context.Context, c *websocket.Conn, err error) {
	if statusFor(err) == http.StatusInternalServerError && !errors.Is(err, context.Canceled) {
		logx.Log.Error().Err(err).Msg("stream parse failed")
	}
	if werr := wsjson.Write(ctx, c, streamMessage{Type: "error", Error: err.Error()}); werr != nil {
		return
	}
	_ = c.Close(websocket.StatusNormalClosure, "")
}
