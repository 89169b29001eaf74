// internal/app/features/health/handler.go
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/studypointin/studypoint/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the liveness endpoint used by deployment probes.
type Handler struct {
	Client *mongo.Client
	Log    *zap.Logger
}

func NewHandler(client *mongo.Client, logger *zap.Logger) *Handler {
	return &Handler{Client: client, Log: logger}
}

type healthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db"`
	Time   string `json:"time"`
}

// ServeHealth handles GET /health. It pings the database and reports 503
// when the ping fails, so load balancers stop routing to a broken instance.
func (h *Handler) ServeHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status: "ok",
		DB:     "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	code := http.StatusOK
	if err := h.Client.Ping(ctx, nil); err != nil {
		h.Log.Warn("health check: database ping failed", zap.Error(err))
		resp.Status = "degraded"
		resp.DB = "unreachable"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
