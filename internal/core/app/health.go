package app

import (
	"context"
	"fmt"
	"time"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	if s.app.codeParser == nil {
		status.Status = "degraded"
		status.Components["parser"] = "missing"
	} else {
		status.Components["parser"] = fmt.Sprintf("ok (%d extensions)", len(s.app.codeParser.SupportedExtensions()))
	}

	if s.app.recorder != nil {
		status.Components["history"] = "ok"
	} else if s.app.Config.History.Enabled {
		status.Status = "degraded"
		status.Components["history"] = "missing but enabled in config"
	}

	return status
}
