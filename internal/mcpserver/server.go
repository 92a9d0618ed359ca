// SPDX-License-Identifier: Apache-2.0

package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kraklabs/cie-core/internal/mcptools"
)

// toolReq and toolRes are local aliases for the go-sdk's request/result
// types, kept short since every handler in tools.go takes/returns one.
type toolReq = mcp.CallToolRequest
type toolRes = mcp.CallToolResult

// Version is the protocol-reported server version, a plain constant (not
// settable with -ldflags, since no build-version package exists).
const Version = "0.1.0"

// Server is the MCP front end over the graph, vector, retrieval, and
// ingest core: every registered tool is a thin wrapper over an
// internal/mcptools function, dispatched through the go-sdk's JSON-RPC
// transport instead of a hand-rolled one.
type Server struct {
	mcp       *mcp.Server
	deps      *mcptools.Deps
	logger    *slog.Logger
	sessionID string
}

// NewServer builds a Server wired against deps and registers every tool
// in §6's tool surface. Each server instance is tagged with a fresh
// session ID, attached to every subsequent log line, so log lines from
// concurrent 'cie mcp' processes against the same project can be told
// apart.
func NewServer(deps *mcptools.Deps, logger *slog.Logger) (*Server, error) {
	if deps == nil {
		return nil, errors.New("deps is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	sessionID := uuid.NewString()
	s := &Server{
		deps:      deps,
		logger:    logger.With(slog.String("session_id", sessionID)),
		sessionID: sessionID,
	}
	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "cie",
		Version: Version,
	}, nil)

	s.registerTools()
	return s, nil
}

// MCPServer returns the underlying go-sdk server, mainly for tests that
// want to drive tool calls directly.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "analyze_file",
		Description: "Ingest a single file into the code graph and vector index, parsing it and recording its entities and edges.",
	}, s.analyzeFile)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "analyze_directory",
		Description: "Walk a directory and ingest every file in it (subdirectories only when recursive), skipping .git, .cie, node_modules and vendor directories and _test.go files.",
	}, s.analyzeDirectory)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "semantic_search",
		Description: "Search the vector index directly by embedding similarity, bypassing lexical and graph candidate generation.",
	}, s.semanticSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "hybrid_search",
		Description: "Run the full retrieval pipeline: query expansion, dense and lexical candidates, fusion, and intent-aware re-ranking.",
	}, s.hybridSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "query_graph",
		Description: "List graph nodes matching type, name-prefix, and language filters.",
	}, s.queryGraph)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_nodes",
		Description: "List every node of a single type in the graph.",
	}, s.listNodes)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "find_paths",
		Description: "Enumerate bounded simple paths between two node keys over edges of every kind.",
	}, s.findPaths)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "pagerank",
		Description: "Rank functions by call-graph PageRank.",
	}, s.pageRank)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "degree_centrality",
		Description: "Report in/out/total edge degree per node.",
	}, s.degreeCentrality)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "betweenness_centrality",
		Description: "Run budgeted Brandes' betweenness centrality over the graph, marking results partial when the node budget truncates the source set.",
	}, s.betweennessCentrality)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "closeness_centrality",
		Description: "Run BFS-based closeness centrality from every candidate node.",
	}, s.closenessCentrality)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "detect_communities",
		Description: "Group function nodes into weakly-connected components over the call graph.",
	}, s.detectCommunities)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "graph_stats",
		Description: "Report node counts by type and edge counts by kind.",
	}, s.graphStats)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "find_cycles",
		Description: "Enumerate cycles in the function call graph or the module import graph.",
	}, s.findCycles)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "coupling_report",
		Description: "Report afferent/efferent coupling and instability per module over the import graph.",
	}, s.couplingReport)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "find_dead_code",
		Description: "Report private functions with no incoming call or reference edges, a heuristic for unreachable code.",
	}, s.findDeadCode)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "find_duplicates",
		Description: "Report function pairs whose embeddings are near-identical, a proxy for near-duplicate implementations.",
	}, s.findDuplicates)

	s.logger.Debug("registered mcp tools", slog.Int("count", 17))
}

// Serve runs the server until ctx is canceled. Only the stdio transport is
// implemented; a Unix domain socket transport is a natural follow-up once
// the go-sdk exposes one, but nothing in this tree depends on it yet.
func (s *Server) Serve(ctx context.Context, transport string) error {
	switch transport {
	case "", "stdio":
		s.logger.Info("mcp server starting", slog.String("transport", "stdio"))
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("mcp server stopped with error", slog.String("error", err.Error()))
			return err
		}
		s.logger.Info("mcp server stopped")
		return nil
	default:
		return fmt.Errorf("unknown mcp transport %q (supported: stdio)", transport)
	}
}
