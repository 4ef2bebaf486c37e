package composio

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

//go:generate mockgen -source=api.go -destination=../../mocks/mockcomposio/composio_mock.gen.go  -package mockcomposio

// API is the remote action platform.
type API interface {
	// ListActions returns the action schemas matching the request filters.
	ListActions(ctx context.Context, req *ListActionsRequest) ([]*ActionSchema, error)
	// ExecuteAction executes the action and returns the raw JSON result.
	ExecuteAction(ctx context.Context, req *ExecuteActionRequest) (json.RawMessage, error)
}

// ActionSchema describes one invocable remote action.
type ActionSchema struct {
	Name        string          `json:"name" yaml:"name"`
	DisplayName string          `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Description string          `json:"description" yaml:"description"`
	Parameters  json.RawMessage `json:"parameters,omitempty" yaml:"-"`
	Response    json.RawMessage `json:"response,omitempty" yaml:"-"`
	AppName     string          `json:"appName,omitempty" yaml:"app_name,omitempty"`
	AppID       string          `json:"appId,omitempty" yaml:"app_id,omitempty"`
	Tags        []string        `json:"tags,omitempty" yaml:"tags,omitempty"`
	Enabled     bool            `json:"enabled" yaml:"enabled"`
}

// ListActionsRequest specifies filters of the action listing query,
// only non-empty filters are sent.
type ListActionsRequest struct {
	Actions               []string
	Apps                  []string
	Tags                  []string
	UseCase               string
	UseCaseLimit          int
	FilterByAvailableApps bool
}

// Query returns the URL query of the request.
func (r *ListActionsRequest) Query() url.Values {
	q := url.Values{}
	if len(r.Apps) > 0 {
		q.Set("apps", strings.Join(r.Apps, ","))
	}
	if len(r.Tags) > 0 {
		q.Set("tags", strings.Join(r.Tags, ","))
	}
	if r.UseCase != "" {
		q.Set("useCase", r.UseCase)
	}
	if len(r.Actions) > 0 {
		q.Set("actions", strings.Join(r.Actions, ","))
	}
	if r.UseCaseLimit > 0 {
		q.Set("usecaseLimit", strconv.Itoa(r.UseCaseLimit))
	}
	if r.FilterByAvailableApps {
		q.Set("filterByAvailableApps", "true")
	}
	return q
}

// ExecuteActionRequest is the request to execute an action.
type ExecuteActionRequest struct {
	Action   string         `json:"action"`
	Params   map[string]any `json:"params"`
	EntityID string         `json:"entityId"`
}
