package schemadiff

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// candidateKeys are the identifier fields tried, in order, when no explicit
// primary key is configured for an array.
var candidateKeys = []string{"id", "name", "port"}

// Planner compiles a JSON Schema into a Plan: one ArrayPlan per array the
// schema describes, keyed by the schema-shaped document path.
type Planner struct {
	primaryKeyMap map[string]string
	basePath      string
	logger        *zap.Logger
}

// NewPlanner creates a Planner with no overrides and a no-op logger.
func NewPlanner() *Planner {
	return &Planner{
		primaryKeyMap: make(map[string]string),
		logger:        zap.NewNop(),
	}
}

// WithPrimaryKey registers an explicit primary key for the array at
// docPath. Override keys may use * as a per-element wildcard segment, e.g.
// /envs/*/services. Explicit keys win over schema heuristics.
func (p *Planner) WithPrimaryKey(docPath, field string) *Planner {
	p.primaryKeyMap[docPath] = field
	return p
}

// WithPrimaryKeyMap registers a batch of explicit primary keys.
func (p *Planner) WithPrimaryKeyMap(m map[string]string) *Planner {
	for docPath, field := range m {
		p.primaryKeyMap[docPath] = field
	}
	return p
}

// WithBasePath strips the given prefix from plan keys. Use when documents
// are rooted below the schema's root.
func (p *Planner) WithBasePath(basePath string) *Planner {
	p.basePath = basePath
	return p
}

// WithLogger routes planner warnings (skipped references) to the given
// logger.
func (p *Planner) WithLogger(logger *zap.Logger) *Planner {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// Compile parses a JSON Schema document and compiles its Plan.
func (p *Planner) Compile(schemaJSON []byte) (Plan, error) {
	schema, err := newSchema(schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaCompilation, err)
	}
	return p.CompileSchema(schema), nil
}

// CompileSchema compiles a Plan from an already parsed schema.
func (p *Planner) CompileSchema(root *Schema) Plan {
	plan := make(Plan)
	visited := make(map[*Schema]bool)
	p.walk(root, root, "", plan, visited)
	return plan
}

// walk traverses the schema, accumulating the document path each subtree
// describes. visited guards against reference cycles: a node already on
// the current path is not descended into again.
func (p *Planner) walk(root, s *Schema, docPath string, plan Plan, visited map[*Schema]bool) {
	if s == nil || s.Boolean != nil || visited[s] {
		return
	}
	visited[s] = true
	defer delete(visited, s)

	if s.Ref != "" {
		resolved := p.resolveRef(root, s.Ref)
		if resolved != nil {
			p.walk(root, resolved, docPath, plan, visited)
		}
		return
	}

	for _, branch := range s.AllOf {
		p.walk(root, branch, docPath, plan, visited)
	}
	for _, branch := range s.AnyOf {
		p.walk(root, branch, docPath, plan, visited)
	}
	for _, branch := range s.OneOf {
		p.walk(root, branch, docPath, plan, visited)
	}

	if s.HasType("object") || s.Properties != nil || s.AdditionalProperties != nil {
		if s.Properties != nil {
			for name, prop := range *s.Properties {
				p.walk(root, prop, joinPath(docPath, name), plan, visited)
			}
		}
		if s.AdditionalProperties != nil && s.AdditionalProperties.Boolean == nil {
			p.walk(root, s.AdditionalProperties, docPath+"/*", plan, visited)
		}
	}

	if s.HasType("array") || s.Items != nil {
		p.storePlan(plan, docPath, p.buildArrayPlan(root, s, docPath))
		if s.Items != nil {
			p.walk(root, s.Items, docPath, plan, visited)
		}
	}
}

func (p *Planner) storePlan(plan Plan, docPath string, ap *ArrayPlan) {
	key := docPath
	if p.basePath != "" {
		key = strings.TrimPrefix(docPath, p.basePath)
	}
	plan[key] = ap
}

// buildArrayPlan derives the matching directive for the array at docPath.
func (p *Planner) buildArrayPlan(root, s *Schema, docPath string) *ArrayPlan {
	itemSchema := p.resolveItems(root, s)
	ap := &ArrayPlan{Strategy: StrategyLCS, ItemSchema: itemSchema}

	switch {
	case itemSchema != nil && itemSchema.IsScalar():
		ap.Strategy = StrategyUnique

	case p.overrideKey(docPath) != "":
		ap.Strategy = StrategyPrimaryKey
		ap.PrimaryKey = p.overrideKey(docPath)
		if itemSchema != nil {
			ap.HashFields = hashFieldsOf(itemSchema)
			ap.RequiredFields = itemSchema.requiredSet()
		}

	case itemSchema != nil:
		p.inferPrimaryKey(itemSchema, ap)
	}

	ap.deriveIdentity()
	return ap
}

// overrideKey consults the configured primaryKeyMap. Keys are matched
// canonically so /envs/*/services applies to the traversal path
// /envs/services.
func (p *Planner) overrideKey(docPath string) string {
	if field, ok := p.primaryKeyMap[docPath]; ok {
		return field
	}
	canonical := canonicalPlanKey(docPath)
	var bestKey, bestField string
	for key, field := range p.primaryKeyMap {
		if canonicalPlanKey(key) != canonical {
			continue
		}
		if bestField == "" || key < bestKey {
			bestKey, bestField = key, field
		}
	}
	return bestField
}

// inferPrimaryKey inspects the item schema, and each anyOf/oneOf branch,
// for the first candidate identifier field that is required and
// scalar-typed. Hash fields are collected from whichever schema supplied
// the key, or from the base item schema when inference fails.
func (p *Planner) inferPrimaryKey(itemSchema *Schema, ap *ArrayPlan) {
	branches := make([]*Schema, 0, 1+len(itemSchema.AnyOf)+len(itemSchema.OneOf))
	branches = append(branches, itemSchema)
	branches = append(branches, itemSchema.AnyOf...)
	branches = append(branches, itemSchema.OneOf...)

	for _, branch := range branches {
		if branch == nil || branch.Boolean != nil {
			continue
		}
		required := branch.requiredSet()
		if required == nil {
			continue
		}
		for _, candidate := range candidateKeys {
			if _, ok := required[candidate]; !ok {
				continue
			}
			prop := branch.propertySchema(candidate)
			if prop == nil || !prop.IsScalar() {
				continue
			}
			ap.Strategy = StrategyPrimaryKey
			ap.PrimaryKey = candidate
			ap.HashFields = hashFieldsOf(branch)
			ap.RequiredFields = required
			return
		}
	}

	ap.HashFields = hashFieldsOf(itemSchema)
	ap.RequiredFields = itemSchema.requiredSet()
}

// hashFieldsOf collects the required fields whose declared type is string
// or numeric. Their inequality implies whole-object inequality, which makes
// them a cheap pre-check during matching.
func hashFieldsOf(s *Schema) []string {
	var fields []string
	for _, name := range s.Required {
		prop := s.propertySchema(name)
		if prop == nil {
			continue
		}
		if prop.HasType("string") || prop.HasType("number") || prop.HasType("integer") {
			fields = append(fields, name)
		}
	}
	return fields
}

// resolveItems resolves the items schema through at most one $ref hop.
func (p *Planner) resolveItems(root, s *Schema) *Schema {
	items := s.Items
	if items == nil || items.Boolean != nil {
		return nil
	}
	if items.Ref != "" {
		if resolved := p.resolveRef(root, items.Ref); resolved != nil {
			return resolved
		}
		return nil
	}
	return items
}

// resolveRef resolves a $ref against the root schema. Non-fragment refs
// and unresolvable pointers are logged and skipped: the corresponding
// subtree simply keeps the default LCS plan.
func (p *Planner) resolveRef(root *Schema, ref string) *Schema {
	if ref == "#" {
		return root
	}
	if !strings.HasPrefix(ref, "#/") {
		p.logger.Warn("skipping unsupported reference",
			zap.String("ref", ref),
			zap.Error(&RefError{Ref: ref, Err: ErrUnsupportedRef}))
		return nil
	}

	resolved := resolveSchemaPointer(root, ref[1:])
	if resolved == nil {
		p.logger.Warn("skipping unresolvable reference",
			zap.String("ref", ref),
			zap.Error(&RefError{Ref: ref, Err: ErrUnresolvableRef}))
		return nil
	}
	return resolved
}

// resolveSchemaPointer walks a #/ JSON Pointer through the schema
// structure. Supported segment contexts mirror where subschemas live:
// $defs, definitions, properties, additionalProperties, items, and the
// composition lists with numeric indices.
func resolveSchemaPointer(root *Schema, pointer string) *Schema {
	current := root
	segments := splitPath(pointer)
	for i := 0; i < len(segments); i++ {
		if current == nil {
			return nil
		}
		switch segments[i] {
		case "$defs", "definitions":
			if i+1 >= len(segments) {
				return nil
			}
			i++
			current = current.Defs[segments[i]]
		case "properties":
			if i+1 >= len(segments) || current.Properties == nil {
				return nil
			}
			i++
			current = (*current.Properties)[segments[i]]
		case "additionalProperties":
			current = current.AdditionalProperties
		case "items":
			current = current.Items
		case "allOf", "anyOf", "oneOf":
			if i+1 >= len(segments) {
				return nil
			}
			list := current.AllOf
			switch segments[i] {
			case "anyOf":
				list = current.AnyOf
			case "oneOf":
				list = current.OneOf
			}
			i++
			idx, err := strconv.Atoi(segments[i])
			if err != nil || idx < 0 || idx >= len(list) {
				return nil
			}
			current = list[idx]
		default:
			return nil
		}
	}
	return current
}
