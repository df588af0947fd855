package api

import (
	"context"
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v4/mem"

	"github.com/voici5986/lumina-layout/internal/serverstate"
)

const probeTimeout = 5 * time.Second

type healthResponse struct {
	Status  string            `json:"status"`
	Backend string            `json:"backend"`
	State   string            `json:"state,omitempty"`
	Engines map[string]string `json:"engines"`
	Memory  *memoryStats      `json:"memory,omitempty"`
}

type memoryStats struct {
	Total       uint64  `json:"total"`
	Available   uint64  `json:"available"`
	UsedPercent float64 `json:"used_percent"`
}

// Health handles GET /health. It always answers 200; a failing default
// engine turns the status to "degraded".
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	reg := a.Parser.Engines()
	resp := healthResponse{
		Status:  "ok",
		Backend: reg.DefaultName(),
		State:   serverstate.GetState(),
		Engines: map[string]string{},
	}
	for _, name := range reg.Names() {
		e, err := reg.Lookup(name)
		if err != nil {
			continue
		}
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		err = e.Probe(ctx)
		cancel()
		if err != nil {
			resp.Engines[name] = err.Error()
			if name == resp.Backend {
				resp.Status = "degraded"
			}
			continue
		}
		resp.Engines[name] = "ready"
	}
	if _, ok := resp.Engines[resp.Backend]; !ok {
		resp.Status = "degraded"
	}
	if vm, err := mem.VirtualMemoryWithContext(r.Context()); err == nil {
		resp.Memory = &memoryStats{Total: vm.Total, Available: vm.Available, UsedPercent: vm.UsedPercent}
	}
	writeJSON(w, http.StatusOK, resp)
}
