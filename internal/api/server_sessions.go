package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/tab_warden/internal/store"
)

func registerSessionHandlers(api huma.API, svc Service) {
	type savedGroupOutput struct {
		Body store.SavedGroup
	}
	huma.Register(api, huma.Operation{OperationID: "save-group", Method: http.MethodPost, Path: "/api/v1/groups/{group_id}/save", Summary: "Persist a live group for later restore", Tags: []string{"Saved"}},
		func(ctx context.Context, input *groupIDInput) (*savedGroupOutput, error) {
			saved, err := svc.SaveGroup(ctx, input.GroupID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &savedGroupOutput{}
			out.Body = saved
			return out, nil
		})

	type savedGroupListOutput struct {
		Body struct {
			Groups []store.SavedGroup `json:"groups"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-saved-groups", Method: http.MethodGet, Path: "/api/v1/saved/groups", Summary: "List saved groups, newest first", Tags: []string{"Saved"}},
		func(ctx context.Context, input *struct{}) (*savedGroupListOutput, error) {
			saved, err := svc.ListSavedGroups()
			if err != nil {
				return nil, mapErr(err)
			}
			out := &savedGroupListOutput{}
			out.Body.Groups = saved
			return out, nil
		})

	type statusOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "delete-saved-group", Method: http.MethodDelete, Path: "/api/v1/saved/groups/{id}", Summary: "Delete a saved group", Tags: []string{"Saved"}},
		func(ctx context.Context, input *savedIDInput) (*statusOutput, error) {
			if err := svc.DeleteSavedGroup(input.ID); err != nil {
				return nil, mapErr(err)
			}
			out := &statusOutput{}
			out.Body.Status = "deleted"
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "restore-saved-group", Method: http.MethodPost, Path: "/api/v1/saved/groups/{id}/restore", Summary: "Reopen a saved group's tabs and regroup them", Tags: []string{"Saved"}},
		func(ctx context.Context, input *savedIDInput) (*applyReportOutput, error) {
			report, err := svc.RestoreGroup(ctx, input.ID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &applyReportOutput{}
			out.Body = report
			return out, nil
		})

	type saveSessionInput struct {
		Body struct {
			Name string `json:"name,omitempty" doc:"Session name. Empty gets a timestamped default."`
		}
	}
	type savedSessionOutput struct {
		Body store.SavedSession
	}
	huma.Register(api, huma.Operation{OperationID: "save-session", Method: http.MethodPost, Path: "/api/v1/sessions", Summary: "Persist every window's tabs as a session", Tags: []string{"Saved"}},
		func(ctx context.Context, input *saveSessionInput) (*savedSessionOutput, error) {
			sess, err := svc.SaveSession(ctx, input.Body.Name)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &savedSessionOutput{}
			out.Body = sess
			return out, nil
		})

	type sessionListOutput struct {
		Body struct {
			Sessions []store.SavedSession `json:"sessions"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-saved-sessions", Method: http.MethodGet, Path: "/api/v1/sessions", Summary: "List saved sessions, newest first", Tags: []string{"Saved"}},
		func(ctx context.Context, input *struct{}) (*sessionListOutput, error) {
			sessions, err := svc.ListSavedSessions()
			if err != nil {
				return nil, mapErr(err)
			}
			out := &sessionListOutput{}
			out.Body.Sessions = sessions
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "delete-saved-session", Method: http.MethodDelete, Path: "/api/v1/sessions/{id}", Summary: "Delete a saved session", Tags: []string{"Saved"}},
		func(ctx context.Context, input *savedIDInput) (*statusOutput, error) {
			if err := svc.DeleteSavedSession(input.ID); err != nil {
				return nil, mapErr(err)
			}
			out := &statusOutput{}
			out.Body.Status = "deleted"
			return out, nil
		})

	type restoreSessionOutput struct {
		Body struct {
			Opened int `json:"opened"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "restore-saved-session", Method: http.MethodPost, Path: "/api/v1/sessions/{id}/restore", Summary: "Reopen every tab of a saved session", Tags: []string{"Saved"}},
		func(ctx context.Context, input *savedIDInput) (*restoreSessionOutput, error) {
			opened, err := svc.RestoreSession(ctx, input.ID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &restoreSessionOutput{}
			out.Body.Opened = opened
			return out, nil
		})
}
