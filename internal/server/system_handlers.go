package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/foliolens/foliolens/internal/database"
)

// SystemHandlers handles health and system monitoring endpoints
type SystemHandlers struct {
	cacheDB     *database.DB
	portfolioDB *database.DB
	startupTime time.Time
	log         zerolog.Logger
}

// NewSystemHandlers creates new system handlers
func NewSystemHandlers(cacheDB, portfolioDB *database.DB, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		cacheDB:     cacheDB,
		portfolioDB: portfolioDB,
		startupTime: time.Now(),
		log:         log.With().Str("handler", "system").Logger(),
	}
}

// HandleHealth handles GET /api/health. The default check pings the
// databases; ?deep=true additionally runs a SQLite integrity check,
// which is slower and meant for manual diagnostics rather than
// liveness probes.
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	deep := r.URL.Query().Get("deep") == "true"

	databases := map[string]string{}
	healthy := true
	for _, db := range []*database.DB{h.cacheDB, h.portfolioDB} {
		if db == nil {
			continue
		}
		var err error
		if deep {
			err = db.HealthCheck(r.Context())
		} else {
			err = db.QuickCheck(r.Context())
		}
		status := "ok"
		if err != nil {
			h.log.Error().Err(err).Str("database", db.Name()).Msg("Database health check failed")
			status = "error: " + err.Error()
			healthy = false
		}
		databases[db.Name()] = status
	}

	cpuPct, memPct := h.getSystemStats()

	status := http.StatusOK
	statusLabel := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		statusLabel = "degraded"
	}

	writeJSON(w, h.log, status, envelope(map[string]interface{}{
		"status":         statusLabel,
		"uptime_seconds": int(time.Since(h.startupTime).Seconds()),
		"databases":      databases,
		"cpu_percent":    cpuPct,
		"memory_percent": memPct,
	}))
}

// getSystemStats returns CPU and RAM usage percentages. The CPU sample
// window is kept short so the health endpoint stays fast.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
