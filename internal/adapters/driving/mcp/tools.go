package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/factsheets/internal/core/domain"
)

// LookupInput is the input schema for the lookup_substance tool.
type LookupInput struct {
	Name string `json:"name" jsonschema:"substance name or alias, case-insensitive"`
}

// LookupOutput is the output schema for the lookup_substance tool.
type LookupOutput struct {
	Found bool `json:"found"`

	// RedirectTo is set when the name is an alias.
	RedirectTo string `json:"redirect_to,omitempty"`

	Name       string            `json:"name,omitempty"`
	PrettyName string            `json:"pretty_name,omitempty"`
	Categories []string          `json:"categories,omitempty"`
	Aliases    []string          `json:"aliases,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`

	// Group is the interaction group combination warnings were drawn from.
	Group    string              `json:"group,omitempty"`
	Warnings map[string][]string `json:"warnings,omitempty"`

	Wiki           string `json:"wiki,omitempty"`
	PsychonautWiki string `json:"psychonautwiki,omitempty"`
	Erowid         string `json:"erowid,omitempty"`
}

// CategoryInput is the input schema for the list_category tool.
type CategoryInput struct {
	Category string `json:"category" jsonschema:"category tag such as stimulant or common"`
}

// ListInput is the input schema for the list_substances tool.
type ListInput struct{}

// ListOutput is the output schema for the listing tools.
type ListOutput struct {
	Category    string             `json:"category,omitempty"`
	Description string             `json:"description,omitempty"`
	Substances  []SubstanceSummary `json:"substances"`
	Count       int                `json:"count"`
}

// SubstanceSummary is one entry of a substance listing.
type SubstanceSummary struct {
	Name       string `json:"name"`
	PrettyName string `json:"pretty_name"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "lookup_substance",
		Description: "Look up a substance factsheet with dosage, duration and combination warnings",
	}, s.handleLookup)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_category",
		Description: "List the substances in a category",
	}, s.handleListCategory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_substances",
		Description: "List every known substance",
	}, s.handleListSubstances)
}

// handleLookup handles the lookup_substance tool invocation.
// An unknown name is reported as not found rather than as a tool error.
func (s *Server) handleLookup(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LookupInput,
) (*mcp.CallToolResult, LookupOutput, error) {
	result, err := s.ports.Factsheet.Lookup(ctx, input.Name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, LookupOutput{}, nil
	}
	if err != nil {
		return nil, LookupOutput{}, err
	}

	if result.IsRedirect() {
		return nil, LookupOutput{Found: true, RedirectTo: result.RedirectTo}, nil
	}
	return nil, lookupOutput(result.Substance), nil
}

// handleListCategory handles the list_category tool invocation.
func (s *Server) handleListCategory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CategoryInput,
) (*mcp.CallToolResult, ListOutput, error) {
	subs, err := s.ports.Factsheet.ListCategory(ctx, input.Category)
	if err != nil {
		return nil, ListOutput{}, err
	}

	output := listOutput(subs)
	output.Category = input.Category
	if cat, err := s.ports.Factsheet.GetCategory(ctx, input.Category); err == nil {
		output.Category = cat.Name
		output.Description = cat.Description
	}
	return nil, output, nil
}

// handleListSubstances handles the list_substances tool invocation.
func (s *Server) handleListSubstances(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	subs, err := s.ports.Factsheet.ListAll(ctx)
	if err != nil {
		return nil, ListOutput{}, err
	}
	return nil, listOutput(subs), nil
}

func listOutput(subs []domain.Substance) ListOutput {
	output := ListOutput{
		Substances: make([]SubstanceSummary, len(subs)),
		Count:      len(subs),
	}
	for i := range subs {
		output.Substances[i] = SubstanceSummary{
			Name:       subs[i].Name,
			PrettyName: subs[i].DisplayName(),
		}
	}
	return output
}

func lookupOutput(a *domain.AnnotatedSubstance) LookupOutput {
	sub := a.Substance
	output := LookupOutput{
		Found:          true,
		Name:           sub.Name,
		PrettyName:     sub.DisplayName(),
		Categories:     sub.Categories,
		Aliases:        sub.Aliases,
		Properties:     make(map[string]string, len(sub.Properties)),
		Wiki:           a.References.Wiki,
		PsychonautWiki: a.References.PsychonautWiki,
	}
	for _, key := range a.PropertyOrder {
		if v, ok := sub.Properties[key]; ok {
			output.Properties[key] = displayValue(v)
		}
	}
	if a.References.Erowid != nil {
		output.Erowid = a.References.Erowid.URL
	}
	if a.Group != nil {
		output.Group = a.Group.PrettyName
		output.Warnings = warnings(a.Safety)
	}
	return output
}

// warnings lists partner display names per non-empty safety bucket.
func warnings(b *domain.SafetyBuckets) map[string][]string {
	if b.Len() == 0 {
		return nil
	}
	buckets := map[string][]domain.SafetyEntry{
		"dangerous": b.Dangerous,
		"unsafe":    b.Unsafe,
		"caution":   b.Caution,
		"ss":        b.SerotoninSyndrome,
		"lowinc":    b.LowRiskSynergy,
		"lowno":     b.LowRiskNoSynergy,
		"lowdec":    b.LowRiskDecrease,
	}
	out := make(map[string][]string)
	for key, entries := range buckets {
		if len(entries) == 0 {
			continue
		}
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.PrettyName
		}
		out[key] = names
	}
	return out
}

func displayValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return domain.Display(data)
}
