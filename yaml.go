package schemadiff

import (
	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
)

// YAMLParser parses YAML text into the same document shape as the JSON
// parsers, with source locations taken from the YAML AST.
type YAMLParser struct{}

// NewYAMLParser returns the location-aware YAML parser.
func NewYAMLParser() *YAMLParser { return &YAMLParser{} }

// Parse decodes the document and walks its AST to build the source map.
func (p *YAMLParser) Parse(data []byte) (*ParsedDocument, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Message: err.Error()}
	}

	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return nil, &ParseError{Message: err.Error()}
	}

	locations := make(map[string]Location)
	if len(file.Docs) > 0 && file.Docs[0].Body != nil {
		walkYAMLNode(file.Docs[0].Body, "", locations)
	}

	return &ParsedDocument{Data: doc, locations: locations}, nil
}

func walkYAMLNode(node ast.Node, path string, locations map[string]Location) {
	if node == nil {
		return
	}
	recordYAMLLocation(node, path, locations)

	switch n := node.(type) {
	case *ast.MappingNode:
		for _, value := range n.Values {
			walkYAMLValue(value, path, locations)
		}
	case *ast.MappingValueNode:
		walkYAMLValue(n, path, locations)
	case *ast.SequenceNode:
		for i, value := range n.Values {
			walkYAMLNode(value, joinIndex(path, i), locations)
		}
	case *ast.AnchorNode:
		walkYAMLNode(n.Value, path, locations)
	}
}

func walkYAMLValue(pair *ast.MappingValueNode, path string, locations map[string]Location) {
	if pair == nil || pair.Key == nil {
		return
	}
	walkYAMLNode(pair.Value, joinPath(path, yamlKeyString(pair.Key)), locations)
}

func yamlKeyString(key ast.Node) string {
	if s, ok := key.(*ast.StringNode); ok {
		return s.Value
	}
	if tok := key.GetToken(); tok != nil {
		return tok.Value
	}
	return key.String()
}

func recordYAMLLocation(node ast.Node, path string, locations map[string]Location) {
	tok := node.GetToken()
	if tok == nil || tok.Position == nil {
		return
	}
	if _, ok := locations[path]; ok {
		return
	}
	locations[path] = Location{
		Line:     tok.Position.Line,
		Column:   tok.Position.Column,
		Position: tok.Position.Offset,
	}
}
