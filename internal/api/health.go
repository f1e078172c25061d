package api

import (
	"net/http"
	"time"

	"versions/relay/internal/common"
	"versions/relay/internal/constants"
	"versions/relay/internal/models/entities"
)

// HealthCheckHandler handles GET /healthCheck. The relay stays "ok" when
// an optional capability is absent; only a failing activity store marks
// it down.
func HealthCheckHandler(deps *Dependencies, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := make(map[string]entities.ServiceStatus)

		if deps.DB != nil {
			status, details := constants.APIStatusOk, "Activity store connected"
			if sqlDB, err := deps.DB.DB(); err != nil {
				status, details = constants.APIStatusDown, err.Error()
			} else if err := sqlDB.PingContext(r.Context()); err != nil {
				status, details = constants.APIStatusDown, err.Error()
			}
			services["activity_db"] = entities.ServiceStatus{Status: string(status), Details: details}
		}

		services["social"] = capabilityStatus(deps.Services.Social.Status().Loaded)
		_, walletConnected := deps.Services.Storage.Wallet()
		services["wallet"] = entities.ServiceStatus{Status: string(constants.APIStatusOk), Details: connectedDetail(walletConnected)}

		overallStatus := string(constants.APIStatusOk)
		if svc, ok := services["activity_db"]; ok && svc.Status != overallStatus {
			overallStatus = string(constants.APIStatusDown)
		}

		resp := entities.HealthCheckResponse{
			Status:   overallStatus,
			Services: services,
			Caches:   cacheStats(deps.Caches),
			UpSince:  upSince,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		}
		code := http.StatusOK
		if overallStatus != string(constants.APIStatusOk) {
			code = http.StatusServiceUnavailable
		}
		common.RespondSuccess(w, resp, code)
	}
}

func capabilityStatus(available bool) entities.ServiceStatus {
	if available {
		return entities.ServiceStatus{Status: string(constants.APIStatusOk), Details: "available"}
	}
	return entities.ServiceStatus{Status: string(constants.APIStatusOk), Details: "unavailable, running in fallback mode"}
}

func connectedDetail(connected bool) string {
	if connected {
		return "connected"
	}
	return "not connected"
}
