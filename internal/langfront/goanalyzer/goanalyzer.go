// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package goanalyzer implements langfront.Analyzer for Go source, built on
// Tree-sitter the same way the teacher's pkg/ingestion parser_go.go does:
// one parser per analyzer, a two-pass walk (collect function nodes, then
// walk each function body for call expressions), and field-name based node
// access rather than positional child indexing.
package goanalyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/kraklabs/cie-core/internal/entity"
	"github.com/kraklabs/cie-core/internal/langfront"
)

// Analyzer parses Go source files with Tree-sitter.
type Analyzer struct {
	parser *sitter.Parser
}

// New constructs a Go Analyzer.
func New() *Analyzer {
	p := sitter.NewParser()
	p.SetLanguage(golang.GetLanguage())
	return &Analyzer{parser: p}
}

func (a *Analyzer) Extensions() []string { return []string{".go"} }
func (a *Analyzer) Language() string     { return "go" }

func (a *Analyzer) Analyze(path string, content []byte) (*langfront.AnalyzeResult, error) {
	tree, err := a.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	pkg := packageName(root, content)
	imports := importPaths(root, content)

	var functions []langfront.FunctionRecord
	walkFunctions(root, content, pkg, func(fn langfront.FunctionRecord) {
		functions = append(functions, fn)
	})

	mod := langfront.ModuleRecord{
		Name:    pkg,
		Imports: imports,
		Attrs: entity.Attrs{
			File:     path,
			Language: "go",
		},
	}

	return &langfront.AnalyzeResult{
		Path:      path,
		Language:  "go",
		Modules:   []langfront.ModuleRecord{mod},
		Functions: functions,
	}, nil
}

func packageName(root *sitter.Node, content []byte) string {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Type() != "package_clause" {
			continue
		}
		if name := child.ChildByFieldName("name"); name != nil {
			return string(content[name.StartByte():name.EndByte()])
		}
	}
	return "main"
}

func importPaths(root *sitter.Node, content []byte) []string {
	var out []string
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Type() != "import_declaration" {
			continue
		}
		collectImportSpecs(child, content, &out)
	}
	return out
}

func collectImportSpecs(node *sitter.Node, content []byte, out *[]string) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import_spec":
			if p := importSpecPath(child, content); p != "" {
				*out = append(*out, p)
			}
		case "import_spec_list":
			for j := 0; j < int(child.ChildCount()); j++ {
				spec := child.Child(j)
				if spec.Type() == "import_spec" {
					if p := importSpecPath(spec, content); p != "" {
						*out = append(*out, p)
					}
				}
			}
		}
	}
}

func importSpecPath(node *sitter.Node, content []byte) string {
	pathNode := node.ChildByFieldName("path")
	if pathNode == nil {
		return ""
	}
	return strings.Trim(string(content[pathNode.StartByte():pathNode.EndByte()]), `"`)
}

// walkFunctions finds every function_declaration and method_declaration in
// the tree and emits a FunctionRecord for each, with call names gathered
// from a second walk over its own body.
func walkFunctions(node *sitter.Node, content []byte, pkg string, emit func(langfront.FunctionRecord)) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "function_declaration":
		if fn := extractFunction(node, content, pkg); fn != nil {
			emit(*fn)
		}
	case "method_declaration":
		if fn := extractMethod(node, content, pkg); fn != nil {
			emit(*fn)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkFunctions(node.Child(i), content, pkg, emit)
	}
}

func extractFunction(node *sitter.Node, content []byte, pkg string) *langfront.FunctionRecord {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := string(content[nameNode.StartByte():nameNode.EndByte()])
	return buildRecord(node, content, pkg, name)
}

func extractMethod(node *sitter.Node, content []byte, pkg string) *langfront.FunctionRecord {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	methodName := string(content[nameNode.StartByte():nameNode.EndByte()])

	receiverType := ""
	if recv := node.ChildByFieldName("receiver"); recv != nil {
		receiverType = receiverTypeName(recv, content)
	}
	fullName := methodName
	if receiverType != "" {
		fullName = receiverType + "." + methodName
	}
	return buildRecord(node, content, pkg, fullName)
}

func receiverTypeName(receiver *sitter.Node, content []byte) string {
	// receiver is a parameter_list containing one parameter_declaration
	// whose type is either a type_identifier or a pointer_type wrapping one.
	for i := 0; i < int(receiver.ChildCount()); i++ {
		child := receiver.Child(i)
		if child.Type() != "parameter_declaration" {
			continue
		}
		typeNode := child.ChildByFieldName("type")
		if typeNode == nil {
			continue
		}
		if typeNode.Type() == "pointer_type" && typeNode.ChildCount() > 0 {
			typeNode = typeNode.Child(int(typeNode.ChildCount()) - 1)
		}
		return string(content[typeNode.StartByte():typeNode.EndByte()])
	}
	return ""
}

func buildRecord(node *sitter.Node, content []byte, pkg, name string) *langfront.FunctionRecord {
	params := node.ChildByFieldName("parameters")
	arity := 0
	if params != nil {
		arity = countParams(params)
	}

	startPoint := node.StartPoint()
	endPoint := node.EndPoint()
	checksum := checksumOf(content[node.StartByte():node.EndByte()])

	calls := make(map[string]struct{})
	if body := node.ChildByFieldName("body"); body != nil {
		collectCalls(body, content, calls)
	}
	callNames := make([]string, 0, len(calls))
	for c := range calls {
		callNames = append(callNames, c)
	}

	return &langfront.FunctionRecord{
		Module:    pkg,
		Name:      name,
		Arity:     arity,
		CallNames: callNames,
		Attrs: entity.Attrs{
			StartLine:  int(startPoint.Row) + 1,
			EndLine:    int(endPoint.Row) + 1,
			StartCol:   int(startPoint.Column),
			EndCol:     int(endPoint.Column),
			Visibility: visibilityOf(name),
			Checksum:   checksum,
			Language:   "go",
		},
	}
}

// countParams counts parameter_declaration nodes, expanding each one by
// the number of names it declares (Go allows "a, b int" as one node).
func countParams(paramList *sitter.Node) int {
	count := 0
	for i := 0; i < int(paramList.ChildCount()); i++ {
		child := paramList.Child(i)
		if child.Type() != "parameter_declaration" && child.Type() != "variadic_parameter_declaration" {
			continue
		}
		names := 0
		for j := 0; j < int(child.ChildCount()); j++ {
			if child.Child(j).Type() == "identifier" {
				names++
			}
		}
		if names == 0 {
			names = 1
		}
		count += names
	}
	return count
}

func collectCalls(node *sitter.Node, content []byte, out map[string]struct{}) {
	if node == nil {
		return
	}
	if node.Type() == "call_expression" {
		if fn := node.ChildByFieldName("function"); fn != nil {
			if name := calleeName(fn, content); name != "" {
				out[name] = struct{}{}
			}
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		collectCalls(node.Child(i), content, out)
	}
}

// calleeName extracts a plain identifier ("foo") or the right-hand side of
// a selector ("pkg.Foo" / "recv.Method" -> "Foo" / "Method"), matching the
// teacher's simple-name call resolution strategy.
func calleeName(node *sitter.Node, content []byte) string {
	switch node.Type() {
	case "identifier":
		return string(content[node.StartByte():node.EndByte()])
	case "selector_expression":
		if field := node.ChildByFieldName("field"); field != nil {
			return string(content[field.StartByte():field.EndByte()])
		}
	}
	return ""
}

func visibilityOf(name string) entity.Visibility {
	simple := name
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		simple = name[idx+1:]
	}
	if simple == "" {
		return entity.VisibilityUnknown
	}
	r := simple[0]
	if r >= 'A' && r <= 'Z' {
		return entity.VisibilityPublic
	}
	return entity.VisibilityPrivate
}

func checksumOf(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8])
}
