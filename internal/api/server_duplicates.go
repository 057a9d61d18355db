package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/tab_warden/internal/dedupe"
	"github.com/dgnsrekt/tab_warden/internal/types"
)

func registerDuplicateHandlers(api huma.API, svc Service) {
	type duplicatesInput struct {
		WindowID int `query:"window_id" default:"0" doc:"Restrict the scan to one window. Omit for all windows."`
	}
	type duplicatesOutput struct {
		Body struct {
			Groups []types.DuplicateGroup `json:"groups"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "find-duplicates", Method: http.MethodGet, Path: "/api/v1/duplicates", Summary: "Find duplicate tabs", Tags: []string{"Duplicates"}},
		func(ctx context.Context, input *duplicatesInput) (*duplicatesOutput, error) {
			var (
				groups []types.DuplicateGroup
				err    error
			)
			if input.WindowID > 0 {
				groups, err = svc.FindDuplicatesInWindow(ctx, input.WindowID)
			} else {
				groups, err = svc.FindDuplicates(ctx)
			}
			if err != nil {
				return nil, mapErr(err)
			}
			out := &duplicatesOutput{}
			out.Body.Groups = groups
			return out, nil
		})

	type duplicatesOfOutput struct {
		Body struct {
			Duplicates []types.Tab `json:"duplicates"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "duplicates-of-tab", Method: http.MethodGet, Path: "/api/v1/tabs/{tab_id}/duplicates", Summary: "List the tabs duplicating one tab", Tags: []string{"Duplicates"}},
		func(ctx context.Context, input *tabIDInput) (*duplicatesOfOutput, error) {
			dups, err := svc.DuplicatesOf(ctx, input.TabID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &duplicatesOfOutput{}
			out.Body.Duplicates = dups
			return out, nil
		})

	type mergeReportOutput struct {
		Body dedupe.MergeReport
	}
	huma.Register(api, huma.Operation{OperationID: "close-duplicates", Method: http.MethodPost, Path: "/api/v1/commands/close-duplicates", Summary: "Close every duplicate tab, keeping each original", Tags: []string{"Duplicates", "Commands"}},
		func(ctx context.Context, input *struct{}) (*mergeReportOutput, error) {
			report, err := svc.CloseDuplicates(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &mergeReportOutput{}
			out.Body = report
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "mark-duplicates", Method: http.MethodPost, Path: "/api/v1/commands/mark-duplicates", Summary: "Group duplicate tabs into red review groups without closing them", Tags: []string{"Duplicates", "Commands"}},
		func(ctx context.Context, input *struct{}) (*applyReportOutput, error) {
			report, err := svc.MarkDuplicates(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &applyReportOutput{}
			out.Body = report
			return out, nil
		})
}
