package compiler

import (
	"github.com/roach88/loom/internal/model"
)

// Compile declares every connector and cable of doc on a new harness and
// resolves its connection records. The first error aborts.
func Compile(doc *Document, opts ...Option) (*model.Harness, error) {
	h, err := declare(doc)
	if err != nil {
		return nil, err
	}

	records, err := ParseRecords(doc.Connections)
	if err != nil {
		return nil, err
	}

	r := NewResolver(h, doc.FerruleTemplates(), opts...)
	if err := r.Resolve(records); err != nil {
		return nil, err
	}
	r.logger.Debug("resolved document",
		"document", doc.Name,
		"connectors", len(h.Connectors()),
		"cables", len(h.Cables()),
		"ferrules", r.FerruleCount())
	return h, nil
}

func declare(doc *Document) (*model.Harness, error) {
	h := model.New()
	for _, d := range doc.Connectors {
		if _, err := h.DeclareConnector(d.Name, d.Config); err != nil {
			return nil, err
		}
	}
	for _, d := range doc.Cables {
		if _, err := h.DeclareCable(d.Name, d.Config); err != nil {
			return nil, err
		}
	}
	for _, d := range doc.Ferrules {
		if h.Connector(d.Name) != nil || h.Cable(d.Name) != nil {
			return nil, model.NewSchemaError(d.Name, "designator declared more than once")
		}
		// Templates are checked the way their instances will be.
		if _, err := model.NewConnector(d.Name, d.Config); err != nil {
			return nil, err
		}
	}
	return h, nil
}
