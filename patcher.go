package schemadiff

import (
	"time"

	"go.uber.org/zap"
)

// Patcher composes the planner output, parser, diff engine, and aggregator
// behind one façade. It owns the result cache and the equality memo for
// its lifetime.
//
// A Patcher is not safe for concurrent use: serialize calls or give each
// goroutine its own instance.
type Patcher struct {
	plan        Plan
	engine      *DiffEngine
	parser      Parser
	explainer   Explainer
	logger      *zap.Logger
	partialKeys []string
	telemetry   *TelemetryCollector
	resultCache map[string]*FinalPatch
}

// New compiles the schema and returns a Patcher with default settings:
// location-aware JSON parsing and the default explainer.
func New(schemaJSON []byte) (*Patcher, error) {
	plan, err := NewPlanner().Compile(schemaJSON)
	if err != nil {
		return nil, err
	}
	return NewPatcher(plan), nil
}

// NewPatcher builds a façade around an already compiled plan.
func NewPatcher(plan Plan) *Patcher {
	return &Patcher{
		plan:        plan,
		engine:      NewDiffEngine(plan),
		parser:      NewJSONParser(),
		explainer:   NewDefaultExplainer(),
		logger:      zap.NewNop(),
		resultCache: make(map[string]*FinalPatch),
	}
}

// WithParser swaps the document parser (JSON, YAML, or custom).
func (p *Patcher) WithParser(parser Parser) *Patcher {
	if parser != nil {
		p.parser = parser
	}
	return p
}

// WithExplainer swaps the explanation renderer.
func (p *Patcher) WithExplainer(explainer Explainer) *Patcher {
	if explainer != nil {
		p.explainer = explainer
	}
	return p
}

// WithLogger routes façade diagnostics to the given logger.
func (p *Patcher) WithLogger(logger *zap.Logger) *Patcher {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// WithPartialDiffKeys restricts diffing to the sub-documents at the given
// JSON Pointers. Reported line numbers become relative to each
// sub-document.
func (p *Patcher) WithPartialDiffKeys(keys ...string) *Patcher {
	p.partialKeys = keys
	return p
}

// WithVerbose attaches a telemetry collector.
func (p *Patcher) WithVerbose() *Patcher {
	if p.telemetry == nil {
		p.telemetry = newTelemetryCollector()
	}
	return p
}

// WithEqualityCache enables or disables the equality memo. The emitted
// deltas are identical either way.
func (p *Patcher) WithEqualityCache(enabled bool) *Patcher {
	p.engine.WithEqualityCache(enabled)
	return p
}

// Telemetry returns the attached collector, or nil outside verbose mode.
func (p *Patcher) Telemetry() *TelemetryCollector { return p.telemetry }

// Plan returns the compiled plan backing this façade.
func (p *Patcher) Plan() Plan { return p.plan }

// Diff parses both documents, computes the delta sequence, and returns the
// annotated patch. Results are cached per input pair until ClearCache.
func (p *Patcher) Diff(oldText, newText []byte) (*FinalPatch, error) {
	cacheKey := resultCacheKey(oldText, newText)
	if cached, ok := p.resultCache[cacheKey]; ok {
		p.telemetry.countRun(true)
		return cached, nil
	}
	p.telemetry.countRun(false)

	parseStart := time.Now()
	oldDoc, err := p.parser.Parse(oldText)
	if err != nil {
		return nil, err
	}
	newDoc, err := p.parser.Parse(newText)
	if err != nil {
		return nil, err
	}
	p.telemetry.record("parse", time.Since(parseStart))

	diffStart := time.Now()
	ops := p.engine.Diff(oldDoc.Data, newDoc.Data, p.partialKeys...)
	p.telemetry.record("diff", time.Since(diffStart))

	aggregateStart := time.Now()
	aggregator := NewAggregator(p.plan, p.explainer)
	patch := aggregator.Aggregate(ops, oldDoc, newDoc, p.partialKeys)
	p.telemetry.record("aggregate", time.Since(aggregateStart))

	p.resultCache[cacheKey] = patch
	p.logger.Debug("diff computed",
		zap.Int("operations", len(patch.Operations)),
		zap.Int("partialKeys", len(p.partialKeys)))
	return patch, nil
}

// DiffValues computes raw deltas for already decoded documents, bypassing
// parsing, annotation, and the result cache.
func (p *Patcher) DiffValues(oldDoc, newDoc any) []Operation {
	return p.engine.Diff(oldDoc, newDoc, p.partialKeys...)
}

// ClearCache drops the result cache and the equality memo.
func (p *Patcher) ClearCache() {
	p.resultCache = make(map[string]*FinalPatch)
	p.engine.ClearCache()
}
