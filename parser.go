package schemadiff

import (
	"bytes"
	"io"
	"sort"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/goccy/go-json"
)

// Location is a 1-based source coordinate. The zero Location means the
// parser had no position for the path.
type Location struct {
	Line     int `json:"line"`
	Column   int `json:"column"`
	Position int `json:"position"`
}

// ParsedDocument is a decoded document plus its path to source-location
// map. Documents from parsers without source-map support locate everything
// at the zero Location.
type ParsedDocument struct {
	Data      any
	locations map[string]Location
}

// Locate resolves a JSON Pointer to the source location of its value.
// Unknown paths degrade to the zero Location.
func (d *ParsedDocument) Locate(path string) Location {
	if d == nil || d.locations == nil {
		return Location{}
	}
	return d.locations[path]
}

// Parser turns raw document text into a ParsedDocument.
type Parser interface {
	Parse(data []byte) (*ParsedDocument, error)
}

// JSONParser parses JSON text and records the source location of every
// value, keyed by JSON Pointer.
type JSONParser struct{}

// NewJSONParser returns the location-aware JSON parser.
func NewJSONParser() *JSONParser { return &JSONParser{} }

// Parse decodes the document and builds its source map in a single token
// pass.
func (p *JSONParser) Parse(data []byte) (*ParsedDocument, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Message: err.Error()}
	}

	locations, err := buildJSONLocations(data)
	if err != nil {
		return nil, err
	}

	return &ParsedDocument{Data: doc, locations: locations}, nil
}

// SimpleParser decodes JSON without building a source map; every path
// locates at {0,0,0}.
type SimpleParser struct{}

// NewSimpleParser returns the location-free parser.
func NewSimpleParser() *SimpleParser { return &SimpleParser{} }

// Parse decodes the document.
func (p *SimpleParser) Parse(data []byte) (*ParsedDocument, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Message: err.Error()}
	}
	return &ParsedDocument{Data: doc}, nil
}

// lineIndex converts byte offsets to 1-based line/column pairs.
type lineIndex struct {
	starts []int
}

func newLineIndex(data []byte) *lineIndex {
	starts := []int{0}
	for i, b := range data {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{starts: starts}
}

func (li *lineIndex) locate(offset int) Location {
	line := sort.Search(len(li.starts), func(i int) bool {
		return li.starts[i] > offset
	})
	return Location{
		Line:     line,
		Column:   offset - li.starts[line-1] + 1,
		Position: offset,
	}
}

// buildJSONLocations tokenizes the document and records the byte offset at
// which each value starts, keyed by JSON Pointer.
func buildJSONLocations(data []byte) (map[string]Location, error) {
	type frame struct {
		path      string
		isObject  bool
		index     int
		key       string
		expectKey bool
	}

	locations := make(map[string]Location)
	index := newLineIndex(data)
	dec := jsontext.NewDecoder(bytes.NewReader(data))

	var stack []frame

	curPath := func() string {
		if len(stack) == 0 {
			return ""
		}
		top := &stack[len(stack)-1]
		if top.isObject {
			return joinPath(top.path, top.key)
		}
		return joinIndex(top.path, top.index)
	}

	completeValue := func() {
		if len(stack) == 0 {
			return
		}
		top := &stack[len(stack)-1]
		if top.isObject {
			top.expectKey = true
		} else {
			top.index++
		}
	}

	for {
		before := int(dec.InputOffset())
		tok, err := dec.ReadToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Position: before, Message: err.Error()}
		}
		start := tokenStart(data, before)

		switch tok.Kind() {
		case '{':
			path := curPath()
			locations[path] = index.locate(start)
			stack = append(stack, frame{path: path, isObject: true, expectKey: true})
		case '}':
			stack = stack[:len(stack)-1]
			completeValue()
		case '[':
			path := curPath()
			locations[path] = index.locate(start)
			stack = append(stack, frame{path: path})
		case ']':
			stack = stack[:len(stack)-1]
			completeValue()
		case '"':
			if len(stack) > 0 && stack[len(stack)-1].isObject && stack[len(stack)-1].expectKey {
				top := &stack[len(stack)-1]
				top.key = tok.String()
				top.expectKey = false
				continue
			}
			locations[curPath()] = index.locate(start)
			completeValue()
		default:
			locations[curPath()] = index.locate(start)
			completeValue()
		}
	}

	return locations, nil
}

// tokenStart advances past the whitespace, commas, and colons that may sit
// between the previous token and the next one.
func tokenStart(data []byte, offset int) int {
	for offset < len(data) {
		switch data[offset] {
		case ' ', '\t', '\r', '\n', ',', ':':
			offset++
		default:
			return offset
		}
	}
	return offset
}
