// Package api exposes the organizer over an OpenAPI-described HTTP
// surface.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/dgnsrekt/tab_warden/internal/dedupe"
	"github.com/dgnsrekt/tab_warden/internal/groups"
	"github.com/dgnsrekt/tab_warden/internal/store"
	"github.com/dgnsrekt/tab_warden/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Service is the organizer surface the HTTP layer drives.
type Service interface {
	Tabs(ctx context.Context) ([]types.Tab, error)
	GetTab(id int) (types.Tab, error)
	OpenTab(ctx context.Context, url string) (types.Tab, error)
	CloseTab(ctx context.Context, id int) error
	ActivateTab(ctx context.Context, id int) error
	SortTabs(ctx context.Context) ([]types.Tab, error)

	FindDuplicates(ctx context.Context) ([]types.DuplicateGroup, error)
	FindDuplicatesInWindow(ctx context.Context, windowID int) ([]types.DuplicateGroup, error)
	DuplicatesOf(ctx context.Context, tabID int) ([]types.Tab, error)
	CloseDuplicates(ctx context.Context) (dedupe.MergeReport, error)
	MarkDuplicates(ctx context.Context) (groups.ApplyReport, error)

	GroupByDomain(ctx context.Context) (groups.ApplyReport, error)
	GroupByPattern(ctx context.Context, expr, title string) (groups.ApplyReport, error)
	GroupByTime(ctx context.Context, gapMinutes float64) (groups.ApplyReport, error)
	GroupByTopic(ctx context.Context) (groups.ApplyReport, error)
	GroupSimilar(ctx context.Context, tabID int) (groups.ApplyReport, error)

	ListGroups() []groups.Handle
	GetGroup(groupID int) (groups.Handle, error)
	Ungroup(groupID int) error
	MoveGroup(groupID, index int) error
	SetCollapsed(groupID int, collapsed bool) error
	SetCollapsedAll(collapsed bool) int
	CloseGroup(ctx context.Context, groupID int) (groups.CloseGroupReport, error)

	SaveGroup(ctx context.Context, groupID int) (store.SavedGroup, error)
	SaveSession(ctx context.Context, name string) (store.SavedSession, error)
	ListSavedGroups() ([]store.SavedGroup, error)
	ListSavedSessions() ([]store.SavedSession, error)
	DeleteSavedGroup(id string) error
	DeleteSavedSession(id string) error
	RestoreGroup(ctx context.Context, savedID string) (groups.ApplyReport, error)
	RestoreSession(ctx context.Context, savedID string) (int, error)

	Settings() store.Settings
	UpdateSettings(settings store.Settings) error
}

type tabIDInput struct {
	TabID int `path:"tab_id" doc:"Numeric tab id from the tab list."`
}

type groupIDInput struct {
	GroupID int `path:"group_id" doc:"Numeric group id from the group list."`
}

type savedIDInput struct {
	ID string `path:"id" doc:"Saved record id."`
}

type applyReportOutput struct {
	Body groups.ApplyReport
}

// NewServer builds the HTTP handler for the organizer API.
func NewServer(svc Service) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Tab Warden API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})

	registerTabHandlers(api, svc)
	registerDuplicateHandlers(api, svc)
	registerGroupHandlers(api, svc)
	registerSessionHandlers(api, svc)
	registerMiscHandlers(api, svc)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *types.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case types.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case types.CodeTabNotFound, types.CodeGroupNotFound:
			return huma.Error404NotFound(coded.Message)
		case types.CodeLLMConfig:
			return huma.Error400BadRequest(coded.Message)
		case types.CodeCDPUnavailable, types.CodeLLMUnavailable:
			return huma.Error502BadGateway(coded.Message)
		case types.CodeEvalFailure:
			return huma.Error504GatewayTimeout(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
