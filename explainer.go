package schemadiff

import "github.com/kaptinlin/go-i18n"

// Explainer renders a human-readable explanation for one delta.
type Explainer interface {
	Explain(op Operation, plan Plan) string
}

// Explanation message codes, resolved through the locale bundles.
const (
	codeAdded    = "operation_added"
	codeRemoved  = "operation_removed"
	codeReplaced = "operation_replaced"
)

// DefaultExplainer produces one localized sentence per operation.
type DefaultExplainer struct {
	localizer *i18n.Localizer
}

// NewDefaultExplainer returns an explainer for the default locale.
// Explanations fall back to English when the bundle cannot be loaded.
func NewDefaultExplainer() *DefaultExplainer {
	return NewLocalizedExplainer("en")
}

// NewLocalizedExplainer returns an explainer for the given locale.
func NewLocalizedExplainer(locale string) *DefaultExplainer {
	bundle, err := GetI18n()
	if err != nil {
		return &DefaultExplainer{}
	}
	return &DefaultExplainer{localizer: bundle.NewLocalizer(locale)}
}

// Explain renders the sentence for one delta.
func (e *DefaultExplainer) Explain(op Operation, _ Plan) string {
	vars := i18n.Vars{"path": op.Path}
	if e.localizer == nil {
		switch op.Op {
		case OpAdd:
			return "Added value at path '" + op.Path + "'."
		case OpRemove:
			return "Removed value from path '" + op.Path + "'."
		default:
			return "Replaced value at path '" + op.Path + "'."
		}
	}
	switch op.Op {
	case OpAdd:
		return e.localizer.Get(codeAdded, vars)
	case OpRemove:
		return e.localizer.Get(codeRemoved, vars)
	default:
		return e.localizer.Get(codeReplaced, vars)
	}
}

// NoopExplainer returns the empty string for every delta.
type NoopExplainer struct{}

// NewNoopExplainer returns the no-op explainer.
func NewNoopExplainer() *NoopExplainer { return &NoopExplainer{} }

// Explain implements Explainer.
func (e *NoopExplainer) Explain(Operation, Plan) string { return "" }
