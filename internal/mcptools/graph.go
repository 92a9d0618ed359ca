// SPDX-License-Identifier: Apache-2.0

package mcptools

import (
	"fmt"
	"strings"

	"github.com/kraklabs/cie-core/internal/entity"
	"github.com/kraklabs/cie-core/internal/galgo"
)

// QueryGraphArgs holds filters for a graph query.
type QueryGraphArgs struct {
	NodeType   string
	NamePrefix string
	Language   string
	Limit      int
}

// QueryGraph lists nodes matching a small set of attribute filters. It is a
// narrower, filter-oriented sibling of ListNodes for callers that don't
// already know the node type they want.
func QueryGraph(deps *Deps, args QueryGraphArgs) (*ToolResult, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = 50
	}

	snap := deps.Store.Snapshot()
	var matches []entity.Node
	for key, attrs := range snap.Nodes {
		if args.NodeType != "" && string(key.Type) != args.NodeType {
			continue
		}
		if args.NamePrefix != "" && !strings.HasPrefix(lastSegment(key.ID), args.NamePrefix) {
			continue
		}
		if args.Language != "" && attrs.Language != args.Language {
			continue
		}
		matches = append(matches, entity.Node{Key: key, Attrs: attrs})
		if len(matches) >= limit {
			break
		}
	}

	if len(matches) == 0 {
		return NewResult("No matching nodes found.\n"), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Query graph (%d matches)\n\n", len(matches))
	for _, n := range matches {
		fmt.Fprintf(&sb, "- `%s:%s` (%s, %s:%d)\n", n.Key.Type, n.Key.ID, n.Attrs.Language, n.Attrs.File, n.Attrs.StartLine)
	}
	return NewResult(sb.String()), nil
}

// ListNodesArgs holds arguments for listing nodes of one type.
type ListNodesArgs struct {
	NodeType string
	Limit    int
}

// ListNodes lists nodes of a single type, in store order.
func ListNodes(deps *Deps, args ListNodesArgs) (*ToolResult, error) {
	if args.NodeType == "" {
		return NewError("Error: 'type' is required"), nil
	}
	limit := args.Limit
	if limit <= 0 {
		limit = 50
	}

	nodes := deps.Store.ListNodes(entity.NodeType(args.NodeType), limit)
	if len(nodes) == 0 {
		return NewResult(fmt.Sprintf("No nodes of type %q found.\n", args.NodeType)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Nodes of type %s (%d found)\n\n", args.NodeType, len(nodes))
	for _, n := range nodes {
		fmt.Fprintf(&sb, "- `%s` (%s:%d)\n", n.Key.ID, n.Attrs.File, n.Attrs.StartLine)
	}
	return NewResult(sb.String()), nil
}

// FindPathsArgs holds arguments for bounded path enumeration.
type FindPathsArgs struct {
	From     string // "type:id"
	To       string // "type:id"
	MaxDepth int
	MaxPaths int
}

// FindPaths enumerates simple paths between two node keys (internal/galgo).
func FindPaths(deps *Deps, args FindPathsArgs) (*ToolResult, error) {
	src, err := parseNodeKey(args.From)
	if err != nil {
		return Errorf("Error: invalid 'from': %v", err), nil
	}
	dst, err := parseNodeKey(args.To)
	if err != nil {
		return Errorf("Error: invalid 'to': %v", err), nil
	}

	snap := deps.Store.Snapshot()
	result := galgo.FindPaths(snap, src, dst, galgo.PathOptions{MaxDepth: args.MaxDepth, MaxPaths: args.MaxPaths})

	if len(result.Paths) == 0 {
		return NewResult(fmt.Sprintf("No path found from `%s` to `%s`.\n", args.From, args.To)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Paths from `%s` to `%s` (%d found)\n\n", args.From, args.To, len(result.Paths))
	for i, path := range result.Paths {
		fmt.Fprintf(&sb, "%d. ", i+1)
		segs := make([]string, len(path))
		for j, n := range path {
			segs[j] = n.ID
		}
		sb.WriteString(strings.Join(segs, " -> "))
		sb.WriteString("\n")
	}
	if result.Truncated {
		sb.WriteString("\n_truncated: max_paths reached_\n")
	}
	if result.WideFanOut {
		sb.WriteString("\n_warning: wide fan-out encountered along the walk, some paths may be missed_\n")
	}
	return NewResult(sb.String()), nil
}

// parseNodeKey parses a "type:id" string into an entity.NodeKey, mirroring
// NodeKey.String's format.
func parseNodeKey(s string) (entity.NodeKey, error) {
	idx := strings.Index(s, ":")
	if idx <= 0 {
		return entity.NodeKey{}, fmt.Errorf("expected \"type:id\", got %q", s)
	}
	typ := entity.NodeType(s[:idx])
	if !typ.Valid() {
		return entity.NodeKey{}, fmt.Errorf("unknown node type %q", s[:idx])
	}
	return entity.NodeKey{Type: typ, ID: s[idx+1:]}, nil
}

func lastSegment(id string) string {
	idx := strings.LastIndex(id, ".")
	if idx < 0 {
		return id
	}
	return id[idx+1:]
}
