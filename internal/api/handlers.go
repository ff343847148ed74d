package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/tabdedup/internal/dedup"
	"github.com/dgnsrekt/tabdedup/internal/engine"
)

func registerHealthHandlers(api huma.API) {
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
}

func registerSettingsHandlers(api huma.API, svc Service) {
	type settingsOutput struct {
		Body dedup.Settings
	}
	huma.Register(api, huma.Operation{OperationID: "get-settings", Method: http.MethodGet, Path: "/api/v1/settings", Summary: "Get active settings", Tags: []string{"Settings"}},
		func(ctx context.Context, input *struct{}) (*settingsOutput, error) {
			return &settingsOutput{Body: svc.GetSettings(ctx)}, nil
		})

	type updateSettingsInput struct {
		Body dedup.Patch
	}
	type ackOutput struct {
		Body engine.Ack
	}
	huma.Register(api, huma.Operation{OperationID: "update-settings", Method: http.MethodPatch, Path: "/api/v1/settings", Summary: "Merge a partial settings update", Tags: []string{"Settings"}},
		func(ctx context.Context, input *updateSettingsInput) (*ackOutput, error) {
			return &ackOutput{Body: svc.UpdateSettings(ctx, input.Body)}, nil
		})
}

func registerTabHandlers(api huma.API, svc Service) {
	type tabsOutput struct {
		Body struct {
			Tabs []dedup.TabRef `json:"tabs"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-tabs", Method: http.MethodGet, Path: "/api/v1/tabs", Summary: "List open tabs in tab-strip order", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *struct{}) (*tabsOutput, error) {
			tabs, err := svc.ListTabs(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &tabsOutput{}
			out.Body.Tabs = tabs
			return out, nil
		})

	type statsOutput struct {
		Body dedup.Stats
	}
	huma.Register(api, huma.Operation{OperationID: "get-stats", Method: http.MethodGet, Path: "/api/v1/stats", Summary: "Tab and duplicate counts", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *struct{}) (*statsOutput, error) {
			stats, err := svc.GetStats(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return &statsOutput{Body: stats}, nil
		})

	type duplicatesOutput struct {
		Body []dedup.DuplicateGroup
	}
	huma.Register(api, huma.Operation{OperationID: "scan-duplicates", Method: http.MethodGet, Path: "/api/v1/duplicates", Summary: "Scan for duplicate groups", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *struct{}) (*duplicatesOutput, error) {
			groups, err := svc.ScanDuplicates(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return &duplicatesOutput{Body: groups}, nil
		})

	type closeOutput struct {
		Body dedup.CloseResult
	}
	huma.Register(api, huma.Operation{OperationID: "close-duplicates", Method: http.MethodPost, Path: "/api/v1/duplicates/close", Summary: "Close all duplicates, keeping the newest tab of each group", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *struct{}) (*closeOutput, error) {
			res, err := svc.CloseDuplicates(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return &closeOutput{Body: res}, nil
		})
}

func registerMessageHandlers(api huma.API, svc Service) {
	type messageInput struct {
		Body engine.Message
	}
	type messageOutput struct {
		Body any
	}
	huma.Register(api, huma.Operation{OperationID: "send-message", Method: http.MethodPost, Path: "/api/v1/message", Summary: "Send a UI message (getSettings, updateSettings, getStats, scanDuplicates, closeDuplicates)", Tags: []string{"Message"}},
		func(ctx context.Context, input *messageInput) (*messageOutput, error) {
			res, err := svc.Dispatch(ctx, input.Body)
			if err != nil {
				return nil, mapErr(err)
			}
			return &messageOutput{Body: res}, nil
		})
}
