package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/tab_warden/internal/groups"
)

func registerGroupHandlers(api huma.API, svc Service) {
	type groupListOutput struct {
		Body struct {
			Groups []groups.Handle `json:"groups"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-groups", Method: http.MethodGet, Path: "/api/v1/groups", Summary: "List tab groups in display order", Tags: []string{"Groups"}},
		func(ctx context.Context, input *struct{}) (*groupListOutput, error) {
			out := &groupListOutput{}
			out.Body.Groups = svc.ListGroups()
			return out, nil
		})

	type groupOutput struct {
		Body groups.Handle
	}
	huma.Register(api, huma.Operation{OperationID: "get-group", Method: http.MethodGet, Path: "/api/v1/groups/{group_id}", Summary: "Get one tab group", Tags: []string{"Groups"}},
		func(ctx context.Context, input *groupIDInput) (*groupOutput, error) {
			h, err := svc.GetGroup(input.GroupID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &groupOutput{}
			out.Body = h
			return out, nil
		})

	type statusOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "ungroup", Method: http.MethodDelete, Path: "/api/v1/groups/{group_id}", Summary: "Dissolve a group, leaving its tabs open", Tags: []string{"Groups"}},
		func(ctx context.Context, input *groupIDInput) (*statusOutput, error) {
			if err := svc.Ungroup(input.GroupID); err != nil {
				return nil, mapErr(err)
			}
			out := &statusOutput{}
			out.Body.Status = "ungrouped"
			return out, nil
		})

	type moveGroupInput struct {
		GroupID int `path:"group_id"`
		Body    struct {
			Index int `json:"index" doc:"Target display position, clamped to the valid range."`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "move-group", Method: http.MethodPut, Path: "/api/v1/groups/{group_id}/position", Summary: "Move a group in display order", Tags: []string{"Groups"}},
		func(ctx context.Context, input *moveGroupInput) (*statusOutput, error) {
			if err := svc.MoveGroup(input.GroupID, input.Body.Index); err != nil {
				return nil, mapErr(err)
			}
			out := &statusOutput{}
			out.Body.Status = "moved"
			return out, nil
		})

	type collapseInput struct {
		GroupID int `path:"group_id"`
		Body    struct {
			Collapsed bool `json:"collapsed"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "set-group-collapsed", Method: http.MethodPut, Path: "/api/v1/groups/{group_id}/collapsed", Summary: "Collapse or expand one group", Tags: []string{"Groups"}},
		func(ctx context.Context, input *collapseInput) (*statusOutput, error) {
			if err := svc.SetCollapsed(input.GroupID, input.Body.Collapsed); err != nil {
				return nil, mapErr(err)
			}
			out := &statusOutput{}
			out.Body.Status = "updated"
			return out, nil
		})

	type collapseAllInput struct {
		Body struct {
			Collapsed bool `json:"collapsed"`
		}
	}
	type collapseAllOutput struct {
		Body struct {
			Changed int `json:"changed"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "set-all-groups-collapsed", Method: http.MethodPut, Path: "/api/v1/groups/collapsed", Summary: "Collapse or expand every group", Tags: []string{"Groups"}},
		func(ctx context.Context, input *collapseAllInput) (*collapseAllOutput, error) {
			out := &collapseAllOutput{}
			out.Body.Changed = svc.SetCollapsedAll(input.Body.Collapsed)
			return out, nil
		})

	type closeGroupOutput struct {
		Body groups.CloseGroupReport
	}
	huma.Register(api, huma.Operation{OperationID: "close-group", Method: http.MethodPost, Path: "/api/v1/groups/{group_id}/close", Summary: "Close every tab in a group and dissolve it", Tags: []string{"Groups"}},
		func(ctx context.Context, input *groupIDInput) (*closeGroupOutput, error) {
			report, err := svc.CloseGroup(ctx, input.GroupID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &closeGroupOutput{}
			out.Body = report
			return out, nil
		})

	// --- Clustering commands ---

	huma.Register(api, huma.Operation{OperationID: "group-by-domain", Method: http.MethodPost, Path: "/api/v1/commands/group-by-domain", Summary: "Group ungrouped tabs by site", Tags: []string{"Commands"}},
		func(ctx context.Context, input *struct{}) (*applyReportOutput, error) {
			report, err := svc.GroupByDomain(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &applyReportOutput{}
			out.Body = report
			return out, nil
		})

	type patternInput struct {
		Body struct {
			Pattern string `json:"pattern" doc:"Regular expression matched against tab URLs."`
			Title   string `json:"title" doc:"Title for the resulting group."`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "group-by-pattern", Method: http.MethodPost, Path: "/api/v1/commands/group-by-pattern", Summary: "Group tabs whose URL matches a pattern", Tags: []string{"Commands"}},
		func(ctx context.Context, input *patternInput) (*applyReportOutput, error) {
			report, err := svc.GroupByPattern(ctx, input.Body.Pattern, input.Body.Title)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &applyReportOutput{}
			out.Body = report
			return out, nil
		})

	type timeInput struct {
		Body struct {
			GapMinutes float64 `json:"gap_minutes,omitempty" doc:"Session boundary threshold. Zero uses the configured default."`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "group-by-time", Method: http.MethodPost, Path: "/api/v1/commands/group-by-time", Summary: "Group ungrouped tabs into browsing sessions", Tags: []string{"Commands"}},
		func(ctx context.Context, input *timeInput) (*applyReportOutput, error) {
			report, err := svc.GroupByTime(ctx, input.Body.GapMinutes)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &applyReportOutput{}
			out.Body = report
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "group-by-topic", Method: http.MethodPost, Path: "/api/v1/commands/group-by-topic", Summary: "Group ungrouped tabs by topic using the configured LLM", Tags: []string{"Commands"}},
		func(ctx context.Context, input *struct{}) (*applyReportOutput, error) {
			report, err := svc.GroupByTopic(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &applyReportOutput{}
			out.Body = report
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "group-similar", Method: http.MethodPost, Path: "/api/v1/tabs/{tab_id}/group-similar", Summary: "Group a tab with the tabs the LLM judges related", Tags: []string{"Commands"}},
		func(ctx context.Context, input *tabIDInput) (*applyReportOutput, error) {
			report, err := svc.GroupSimilar(ctx, input.TabID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &applyReportOutput{}
			out.Body = report
			return out, nil
		})
}
