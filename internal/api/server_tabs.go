package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/tab_warden/internal/types"
)

func registerTabHandlers(api huma.API, svc Service) {
	type tabListOutput struct {
		Body struct {
			Tabs []types.Tab `json:"tabs"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-tabs", Method: http.MethodGet, Path: "/api/v1/tabs", Summary: "List all open tabs", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *struct{}) (*tabListOutput, error) {
			tabs, err := svc.Tabs(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &tabListOutput{}
			out.Body.Tabs = tabs
			return out, nil
		})

	type tabOutput struct {
		Body types.Tab
	}
	huma.Register(api, huma.Operation{OperationID: "get-tab", Method: http.MethodGet, Path: "/api/v1/tabs/{tab_id}", Summary: "Get one tab", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *tabIDInput) (*tabOutput, error) {
			tab, err := svc.GetTab(input.TabID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &tabOutput{}
			out.Body = tab
			return out, nil
		})

	type openTabInput struct {
		Body struct {
			URL string `json:"url" doc:"URL to open in the new tab."`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "open-tab", Method: http.MethodPost, Path: "/api/v1/tabs", Summary: "Open a new tab", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *openTabInput) (*tabOutput, error) {
			tab, err := svc.OpenTab(ctx, input.Body.URL)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &tabOutput{}
			out.Body = tab
			return out, nil
		})

	type statusOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "close-tab", Method: http.MethodDelete, Path: "/api/v1/tabs/{tab_id}", Summary: "Close one tab", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *tabIDInput) (*statusOutput, error) {
			if err := svc.CloseTab(ctx, input.TabID); err != nil {
				return nil, mapErr(err)
			}
			out := &statusOutput{}
			out.Body.Status = "closed"
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "activate-tab", Method: http.MethodPost, Path: "/api/v1/tabs/{tab_id}/activate", Summary: "Focus one tab", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *tabIDInput) (*statusOutput, error) {
			if err := svc.ActivateTab(ctx, input.TabID); err != nil {
				return nil, mapErr(err)
			}
			out := &statusOutput{}
			out.Body.Status = "activated"
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "sort-tabs", Method: http.MethodPost, Path: "/api/v1/commands/sort-tabs", Summary: "Return tabs sorted by window, host, and URL", Description: "The browser tab strip keeps its own order; the sorted list is returned for clients to render.", Tags: []string{"Commands"}},
		func(ctx context.Context, input *struct{}) (*tabListOutput, error) {
			tabs, err := svc.SortTabs(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &tabListOutput{}
			out.Body.Tabs = tabs
			return out, nil
		})
}
