package validator

import (
	"context"

	"github.com/sirupsen/logrus"

	"assetimport/internal/domain"
	"assetimport/internal/port"
	"assetimport/internal/schema"
)

// Pass carries the state of one validation run: claimed natural keys and
// the category list, fetched at most once and only when a row needs it.
type Pass struct {
	seen map[string]int

	lookup   port.CategoryLookup
	log      *logrus.Entry
	fetched  bool
	known    *CategorySet
	fetchErr error
}

func newPass(lookup port.CategoryLookup, log *logrus.Entry) *Pass {
	return &Pass{seen: make(map[string]int), lookup: lookup, log: log}
}

func (p *Pass) categories(ctx context.Context) (*CategorySet, bool) {
	if p.lookup == nil {
		return nil, false
	}
	if !p.fetched {
		p.fetched = true
		list, err := p.lookup.ListCategories(ctx)
		if err != nil {
			p.fetchErr = err
			p.log.WithError(err).Warn("category lookup failed, skipping reference check")
		} else {
			p.known = NewCategorySet(list)
			p.log.WithField("categories", p.known.Len()).Debug("category lookup loaded")
		}
	}
	return p.known, p.fetchErr == nil
}

// Engine runs a schema's rules over parsed rows.
type Engine struct {
	schema   *schema.Schema
	registry *Registry
	lookup   port.CategoryLookup
	log      *logrus.Entry
}

// NewEngine builds the rule chain for a schema. Rules run in this order:
// required, length, characters, field formats, in-batch duplicates, and the
// category reference check when the schema declares one. lookup may be nil.
func NewEngine(s *schema.Schema, lookup port.CategoryLookup, log *logrus.Entry) *Engine {
	v := newStructValidator()
	registry := NewRegistry()
	for _, group := range [][]Rule{
		RequiredRules(v, s),
		LengthRules(v, s),
		CharsetRules(v, s),
		FormatRules(v, s),
	} {
		for _, r := range group {
			registry.Register(r)
		}
	}
	registry.Register(DuplicateInBatchRule(s))
	if s.ReferenceField != "" {
		registry.Register(CategoryExistsRule(s))
	}
	return &Engine{
		schema:   s,
		registry: registry,
		lookup:   lookup,
		log:      log.WithField("kind", s.Kind),
	}
}

// Registry exposes the engine's rules.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Validate classifies every row. It never fails: a row that breaks a rule
// becomes a local rejection carrying the first violation only.
func (e *Engine) Validate(ctx context.Context, rows []domain.RawRow) Partition {
	pass := newPass(e.lookup, e.log)
	out := Partition{
		Valid:    make([]domain.ValidatedRecord, 0, len(rows)),
		Rejected: make([]domain.RejectionEntry, 0),
	}

	rules := e.registry.All()
	for _, row := range rows {
		if v := check(ctx, rules, pass, row); v != nil {
			out.Rejected = append(out.Rejected, domain.RejectionEntry{
				RowNumber: row.RowNumber,
				Data:      row.Data(),
				Code:      v.Code,
				Error:     v.Message,
				Source:    domain.SourceLocal,
			})
			continue
		}
		out.Valid = append(out.Valid, domain.ValidatedRecord{
			RowNumber: row.RowNumber,
			Values:    e.payload(row),
		})
	}

	e.log.WithFields(logrus.Fields{
		"rows":     len(rows),
		"valid":    len(out.Valid),
		"rejected": len(out.Rejected),
	}).Info("validation complete")
	return out
}

func check(ctx context.Context, rules []Rule, pass *Pass, row domain.RawRow) *Violation {
	for _, rule := range rules {
		if v := rule.Check(ctx, pass, row); v != nil {
			return v
		}
	}
	return nil
}

// payload maps a row onto the inventory API record shape.
func (e *Engine) payload(row domain.RawRow) map[string]any {
	values := make(map[string]any, len(e.schema.Fields))
	for _, f := range e.schema.Fields {
		raw := row.Get(f.Name)
		switch f.Kind {
		case schema.KindBoolean:
			b, ok := schema.ParseBool(raw)
			if !ok {
				b = true
			}
			values[f.Name] = b
		default:
			values[f.Name] = raw
		}
	}
	return values
}

