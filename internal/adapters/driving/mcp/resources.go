package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/factsheets/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for factsheet resources.
	uriScheme = "factsheets://"

	mimeJSON = "application/json"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "substances",
		Name:        "substances",
		Description: "Every known substance with its display name",
		MIMEType:    mimeJSON,
	}, s.handleSubstancesResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "categories",
		Name:        "categories",
		Description: "Every substance category with its description",
		MIMEType:    mimeJSON,
	}, s.handleCategoriesResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "tasks",
		Name:        "tasks",
		Description: "State of the background refresh tasks",
		MIMEType:    mimeJSON,
	}, s.handleTasksResource)

	// Template for a full annotated factsheet.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "substances/{name}",
		Name:        "substance-factsheet",
		Description: "Annotated factsheet of a single substance",
		MIMEType:    mimeJSON,
	}, s.handleFactsheetResource)
}

// handleSubstancesResource returns every substance.
func (s *Server) handleSubstancesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	subs, err := s.ports.Factsheet.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing substances: %w", err)
	}
	return jsonResource(req.Params.URI, listOutput(subs).Substances)
}

// handleCategoriesResource returns every category.
func (s *Server) handleCategoriesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	cats, err := s.ports.Factsheet.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return jsonResource(req.Params.URI, cats)
}

// handleTasksResource returns the scheduler's task state.
func (s *Server) handleTasksResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type taskInfo struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Runs        int    `json:"runs"`
		LastRun     string `json:"last_run,omitempty"`
		LastSuccess string `json:"last_success,omitempty"`
		LastError   string `json:"last_error,omitempty"`
	}

	infos := []taskInfo{}
	if s.ports.Scheduler != nil {
		tasks, err := s.ports.Scheduler.Tasks(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing tasks: %w", err)
		}
		for i := range tasks {
			infos = append(infos, taskInfo{
				ID:          tasks[i].ID,
				Name:        tasks[i].Name,
				Runs:        tasks[i].Runs,
				LastRun:     formatTime(tasks[i].LastRun),
				LastSuccess: formatTime(tasks[i].LastSuccess),
				LastError:   tasks[i].LastError,
			})
		}
	}
	return jsonResource(req.Params.URI, infos)
}

// handleFactsheetResource returns the annotated factsheet of one substance.
// An alias resolves to the factsheet of its canonical substance.
func (s *Server) handleFactsheetResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractSubstanceName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	result, err := s.ports.Factsheet.Lookup(ctx, name)
	if err == nil && result.IsRedirect() {
		result, err = s.ports.Factsheet.Lookup(ctx, result.RedirectTo)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", name, err)
	}
	if result.Substance == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResource(req.Params.URI, result.Substance)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     string(data),
		}},
	}, nil
}

// extractSubstanceName extracts the name from a URI like factsheets://substances/{name}.
func extractSubstanceName(uri string) string {
	const prefix = uriScheme + "substances/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	name := strings.TrimPrefix(uri, prefix)
	if strings.Contains(name, "/") {
		return ""
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return name
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
