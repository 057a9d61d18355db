package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/tab_warden/internal/store"
)

func registerMiscHandlers(api huma.API, svc Service) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})

	type settingsOutput struct {
		Body store.Settings
	}
	huma.Register(api, huma.Operation{OperationID: "get-settings", Method: http.MethodGet, Path: "/api/v1/settings", Summary: "Get runtime settings", Tags: []string{"Settings"}},
		func(ctx context.Context, input *struct{}) (*settingsOutput, error) {
			out := &settingsOutput{}
			out.Body = svc.Settings()
			return out, nil
		})

	type settingsInput struct {
		Body store.Settings
	}
	huma.Register(api, huma.Operation{OperationID: "update-settings", Method: http.MethodPut, Path: "/api/v1/settings", Summary: "Replace runtime settings", Tags: []string{"Settings"}},
		func(ctx context.Context, input *settingsInput) (*settingsOutput, error) {
			if err := svc.UpdateSettings(input.Body); err != nil {
				return nil, mapErr(err)
			}
			out := &settingsOutput{}
			out.Body = svc.Settings()
			return out, nil
		})

	type panelOutput struct {
		Body struct {
			URL string `json:"url"`
		}
	}
	// The organizer has no native UI; the control panel is the interactive
	// API reference.
	huma.Register(api, huma.Operation{OperationID: "open-panel", Method: http.MethodPost, Path: "/api/v1/commands/open-panel", Summary: "Get the control panel URL", Tags: []string{"Commands"}},
		func(ctx context.Context, input *struct{}) (*panelOutput, error) {
			out := &panelOutput{}
			out.Body.URL = "/docs"
			return out, nil
		})
}
