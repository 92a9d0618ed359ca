// SPDX-License-Identifier: Apache-2.0

package mcpserver

import (
	"context"

	"github.com/kraklabs/cie-core/internal/mcptools"
)

// TextOutput is the structured output every tool returns: mcptools already
// renders its result as one markdown-ish text block, so every handler
// reduces to picking that block (or a mapped error) out of a *ToolResult.
type TextOutput struct {
	Text string `json:"text" jsonschema:"tool output, rendered as markdown"`
}

// fromResult adapts an mcptools (*ToolResult, error) pair to the go-sdk's
// (output, error) handler shape. A non-nil err is a genuine core failure
// (mapped by Kind); an IsError result is mcptools' own argument validation,
// which is always an invalid-params condition from the caller's side.
func fromResult(res *mcptools.ToolResult, err error) (TextOutput, error) {
	if err != nil {
		return TextOutput{}, MapError(err)
	}
	if res.IsError {
		return TextOutput{}, NewInvalidParamsError(res.Text)
	}
	return TextOutput{Text: res.Text}, nil
}

// AnalyzeFileInput is the input schema for analyze_file.
type AnalyzeFileInput struct {
	Path string `json:"path" jsonschema:"absolute or working-directory-relative path to the file to ingest"`
}

func (s *Server) analyzeFile(ctx context.Context, _ *toolReq, in AnalyzeFileInput) (*toolRes, TextOutput, error) {
	out, err := fromResult(mcptools.AnalyzeFile(ctx, s.deps, mcptools.AnalyzeFileArgs{Path: in.Path}))
	return nil, out, err
}

// AnalyzeDirectoryInput is the input schema for analyze_directory.
type AnalyzeDirectoryInput struct {
	Path      string `json:"path" jsonschema:"directory to walk and ingest"`
	Recursive bool   `json:"recursive,omitempty" jsonschema:"descend into subdirectories, default false"`
}

func (s *Server) analyzeDirectory(ctx context.Context, _ *toolReq, in AnalyzeDirectoryInput) (*toolRes, TextOutput, error) {
	out, err := fromResult(mcptools.AnalyzeDirectory(ctx, s.deps, mcptools.AnalyzeDirectoryArgs{
		Path: in.Path, Recursive: in.Recursive,
	}))
	return nil, out, err
}

// SemanticSearchInput is the input schema for semantic_search.
type SemanticSearchInput struct {
	Query     string  `json:"query" jsonschema:"natural-language or code query to embed and search"`
	K         int     `json:"k,omitempty" jsonschema:"maximum number of results, default 10"`
	Threshold float64 `json:"threshold,omitempty" jsonschema:"minimum cosine similarity, defaults to the project's semantic threshold"`
	NodeType  string  `json:"node_type,omitempty" jsonschema:"restrict results to one node type, e.g. function, file, module"`
}

func (s *Server) semanticSearch(ctx context.Context, _ *toolReq, in SemanticSearchInput) (*toolRes, TextOutput, error) {
	out, err := fromResult(mcptools.SemanticSearch(ctx, s.deps, mcptools.SemanticSearchArgs{
		Query: in.Query, K: in.K, Threshold: in.Threshold, NodeType: in.NodeType,
	}))
	return nil, out, err
}

// HybridSearchInput is the input schema for hybrid_search.
type HybridSearchInput struct {
	Query    string `json:"query" jsonschema:"natural-language or code query"`
	K        int    `json:"k,omitempty" jsonschema:"maximum number of results, default from project config"`
	Strategy string `json:"strategy,omitempty" jsonschema:"retrieval intent: general, explain, refactor, or debug"`
}

func (s *Server) hybridSearch(ctx context.Context, _ *toolReq, in HybridSearchInput) (*toolRes, TextOutput, error) {
	out, err := fromResult(mcptools.HybridSearch(ctx, s.deps, mcptools.HybridSearchArgs{
		Query: in.Query, K: in.K, Strategy: in.Strategy,
	}))
	return nil, out, err
}

// QueryGraphInput is the input schema for query_graph.
type QueryGraphInput struct {
	NodeType   string `json:"node_type,omitempty" jsonschema:"filter by node type"`
	NamePrefix string `json:"name_prefix,omitempty" jsonschema:"filter by the final name segment's prefix"`
	Language   string `json:"language,omitempty" jsonschema:"filter by source language"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of matches, default 50"`
}

func (s *Server) queryGraph(_ context.Context, _ *toolReq, in QueryGraphInput) (*toolRes, TextOutput, error) {
	out, err := fromResult(mcptools.QueryGraph(s.deps, mcptools.QueryGraphArgs{
		NodeType: in.NodeType, NamePrefix: in.NamePrefix, Language: in.Language, Limit: in.Limit,
	}))
	return nil, out, err
}

// ListNodesInput is the input schema for list_nodes.
type ListNodesInput struct {
	NodeType string `json:"node_type" jsonschema:"node type to list, e.g. function, file, module"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of nodes, default 50"`
}

func (s *Server) listNodes(_ context.Context, _ *toolReq, in ListNodesInput) (*toolRes, TextOutput, error) {
	out, err := fromResult(mcptools.ListNodes(s.deps, mcptools.ListNodesArgs{NodeType: in.NodeType, Limit: in.Limit}))
	return nil, out, err
}

// FindPathsInput is the input schema for find_paths.
type FindPathsInput struct {
	From     string `json:"from" jsonschema:"source node key, formatted \"type:id\""`
	To       string `json:"to" jsonschema:"destination node key, formatted \"type:id\""`
	MaxDepth int    `json:"max_depth,omitempty" jsonschema:"maximum path length to explore"`
	MaxPaths int    `json:"max_paths,omitempty" jsonschema:"maximum number of paths to return"`
}

func (s *Server) findPaths(_ context.Context, _ *toolReq, in FindPathsInput) (*toolRes, TextOutput, error) {
	out, err := fromResult(mcptools.FindPaths(s.deps, mcptools.FindPathsArgs{
		From: in.From, To: in.To, MaxDepth: in.MaxDepth, MaxPaths: in.MaxPaths,
	}))
	return nil, out, err
}

// PageRankInput is the input schema for pagerank.
type PageRankInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of functions to return, default 20"`
}

func (s *Server) pageRank(ctx context.Context, _ *toolReq, in PageRankInput) (*toolRes, TextOutput, error) {
	out, err := fromResult(mcptools.PageRank(ctx, s.deps, mcptools.PageRankArgs{Limit: in.Limit}))
	return nil, out, err
}

// DegreeCentralityInput is the input schema for degree_centrality.
type DegreeCentralityInput struct {
	NodeType string `json:"node_type,omitempty" jsonschema:"restrict to one node type"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of nodes, default 20"`
}

func (s *Server) degreeCentrality(_ context.Context, _ *toolReq, in DegreeCentralityInput) (*toolRes, TextOutput, error) {
	out, err := fromResult(mcptools.DegreeCentrality(s.deps, mcptools.DegreeCentralityArgs{
		NodeType: in.NodeType, Limit: in.Limit,
	}))
	return nil, out, err
}

// BetweennessCentralityInput is the input schema for betweenness_centrality.
type BetweennessCentralityInput struct {
	NodeBudget int `json:"node_budget,omitempty" jsonschema:"cap on source nodes explored, defaults to the project's configured budget"`
	Limit      int `json:"limit,omitempty" jsonschema:"maximum number of nodes, default 20"`
}

func (s *Server) betweennessCentrality(ctx context.Context, _ *toolReq, in BetweennessCentralityInput) (*toolRes, TextOutput, error) {
	out, err := fromResult(mcptools.BetweennessCentrality(ctx, s.deps, mcptools.BetweennessCentralityArgs{
		NodeBudget: in.NodeBudget, Limit: in.Limit,
	}))
	return nil, out, err
}

// ClosenessCentralityInput is the input schema for closeness_centrality.
type ClosenessCentralityInput struct {
	NodeType string `json:"node_type,omitempty" jsonschema:"restrict candidates to one node type"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of nodes, default 20"`
}

func (s *Server) closenessCentrality(ctx context.Context, _ *toolReq, in ClosenessCentralityInput) (*toolRes, TextOutput, error) {
	out, err := fromResult(mcptools.ClosenessCentrality(ctx, s.deps, mcptools.ClosenessCentralityArgs{
		NodeType: in.NodeType, Limit: in.Limit,
	}))
	return nil, out, err
}

// DetectCommunitiesInput is the input schema for detect_communities.
type DetectCommunitiesInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of communities, default 20"`
}

func (s *Server) detectCommunities(_ context.Context, _ *toolReq, in DetectCommunitiesInput) (*toolRes, TextOutput, error) {
	out, err := fromResult(mcptools.DetectCommunities(s.deps, mcptools.DetectCommunitiesArgs{Limit: in.Limit}))
	return nil, out, err
}

// GraphStatsInput is the (empty) input schema for graph_stats.
type GraphStatsInput struct{}

func (s *Server) graphStats(_ context.Context, _ *toolReq, _ GraphStatsInput) (*toolRes, TextOutput, error) {
	out, err := fromResult(mcptools.GraphStats(s.deps))
	return nil, out, err
}

// FindCyclesInput is the input schema for find_cycles.
type FindCyclesInput struct {
	Scope          string `json:"scope,omitempty" jsonschema:"cycle scope: function or module, default function"`
	MinCycleLength int    `json:"min_cycle_length,omitempty" jsonschema:"smallest cycle length to report"`
	Limit          int    `json:"limit,omitempty" jsonschema:"maximum number of cycles to return"`
}

func (s *Server) findCycles(_ context.Context, _ *toolReq, in FindCyclesInput) (*toolRes, TextOutput, error) {
	out, err := fromResult(mcptools.FindCycles(s.deps, mcptools.FindCyclesArgs{
		Scope: in.Scope, MinCycleLength: in.MinCycleLength, Limit: in.Limit,
	}))
	return nil, out, err
}

// CouplingReportInput is the input schema for coupling_report.
type CouplingReportInput struct {
	Module     string `json:"module,omitempty" jsonschema:"report only this module, default reports every module"`
	Transitive bool   `json:"transitive,omitempty" jsonschema:"compute coupling over the transitive import closure"`
}

func (s *Server) couplingReport(_ context.Context, _ *toolReq, in CouplingReportInput) (*toolRes, TextOutput, error) {
	out, err := fromResult(mcptools.CouplingReport(s.deps, mcptools.CouplingReportArgs{
		Module: in.Module, Transitive: in.Transitive,
	}))
	return nil, out, err
}

// FindDeadCodeInput is the (empty) input schema for find_dead_code.
type FindDeadCodeInput struct{}

func (s *Server) findDeadCode(_ context.Context, _ *toolReq, _ FindDeadCodeInput) (*toolRes, TextOutput, error) {
	out, err := fromResult(mcptools.FindDeadCode(s.deps))
	return nil, out, err
}

// FindDuplicatesInput is the input schema for find_duplicates.
type FindDuplicatesInput struct {
	Threshold float64 `json:"threshold,omitempty" jsonschema:"minimum cosine similarity to report, default 0.95"`
	Limit     int     `json:"limit,omitempty" jsonschema:"maximum number of pairs to return, default 20"`
}

func (s *Server) findDuplicates(_ context.Context, _ *toolReq, in FindDuplicatesInput) (*toolRes, TextOutput, error) {
	out, err := fromResult(mcptools.FindDuplicates(s.deps, mcptools.FindDuplicatesArgs{
		Threshold: in.Threshold, Limit: in.Limit,
	}))
	return nil, out, err
}
