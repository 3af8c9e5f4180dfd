// Package reconciler submits validated records to the inventory and merges
// the server's verdict back onto spreadsheet rows.
package reconciler

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"assetimport/internal/domain"
	"assetimport/internal/port"
	"assetimport/internal/schema"
)

// Outcome holds the server's verdict for one batch.
type Outcome struct {
	Accepted []domain.AcceptedRecord
	Rejected []domain.RejectionEntry
}

// Options tune reconciliation behavior.
type Options struct {
	// EmptyMainCategoryWorkaround accepts category rows the server rejects
	// only because two rows left the main category blank.
	EmptyMainCategoryWorkaround bool
}

// Reconciler performs one bulk submit per batch. It never retries.
type Reconciler struct {
	submitter port.BulkSubmitter
	schema    *schema.Schema
	opts      Options
	log       *logrus.Entry
	newID     func() string
}

// New creates a Reconciler for one import kind.
func New(submitter port.BulkSubmitter, s *schema.Schema, opts Options, log *logrus.Entry) *Reconciler {
	return &Reconciler{
		submitter: submitter,
		schema:    s,
		opts:      opts,
		log:       log.WithFields(logrus.Fields{"component": "reconciler", "kind": s.Kind}),
		newID:     func() string { return "synthetic-" + uuid.New().String() },
	}
}

type verdict int

const (
	verdictUnmentioned verdict = iota
	verdictAccepted
	verdictRejected
)

type pending struct {
	record  domain.ValidatedRecord
	verdict verdict
	id      string
	errors  []string
}

// Reconcile submits records and classifies each one. Every input record ends
// up in exactly one of Accepted or Rejected.
func (r *Reconciler) Reconcile(ctx context.Context, records []domain.ValidatedRecord) Outcome {
	out := Outcome{
		Accepted: make([]domain.AcceptedRecord, 0, len(records)),
		Rejected: make([]domain.RejectionEntry, 0),
	}
	if len(records) == 0 {
		return out
	}

	payload := make([]map[string]any, len(records))
	for i := range records {
		payload[i] = records[i].Values
	}

	body, err := r.submitter.BulkSubmit(ctx, r.schema.Kind, payload)
	if err != nil {
		r.log.WithError(err).Error("bulk submit failed")
		return r.failAll(records, err)
	}

	shape, err := ProbeShape(body)
	var failure *FailureError
	if errors.As(err, &failure) {
		r.log.WithError(err).Error("bulk submit reported failure")
		return r.failAll(records, err)
	}
	if err != nil {
		r.log.WithError(err).Error("bulk response not understood")
		return r.failAll(records, fmt.Errorf("unreadable response: %w", err))
	}
	r.log.WithFields(logrus.Fields{
		"shape":    shape.Name,
		"accepted": len(shape.Accepted),
		"rejected": len(shape.Rejected),
	}).Info("bulk response received")

	batch := make([]*pending, len(records))
	for i := range records {
		batch[i] = &pending{record: records[i]}
	}
	r.apply(batch, shape.Accepted, verdictAccepted)
	r.apply(batch, shape.Rejected, verdictRejected)

	for _, p := range batch {
		switch p.verdict {
		case verdictRejected:
			if r.isEmptyMainCategoryFalsePositive(p) {
				id := r.newID()
				r.log.WithField("row", p.record.RowNumber).Info("accepting row rejected only for empty main category duplicate")
				out.Accepted = append(out.Accepted, domain.AcceptedRecord{
					RowNumber:   p.record.RowNumber,
					Data:        p.record.Values,
					ID:          id,
					Synthesized: true,
				})
				continue
			}
			code, msg := TranslateErrors(p.errors)
			out.Rejected = append(out.Rejected, domain.RejectionEntry{
				RowNumber: p.record.RowNumber,
				Data:      p.record.Values,
				Code:      code,
				Error:     msg,
				Source:    domain.SourceRemote,
			})
		default:
			if p.verdict == verdictUnmentioned {
				r.log.WithField("row", p.record.RowNumber).Warn("row not mentioned in bulk response, treating as accepted")
			}
			out.Accepted = append(out.Accepted, domain.AcceptedRecord{
				RowNumber: p.record.RowNumber,
				Data:      p.record.Values,
				ID:        p.id,
			})
		}
	}
	return out
}

func (r *Reconciler) failAll(records []domain.ValidatedRecord, err error) Outcome {
	msg := "Server error: " + err.Error()
	out := Outcome{
		Accepted: make([]domain.AcceptedRecord, 0),
		Rejected: make([]domain.RejectionEntry, 0, len(records)),
	}
	for i := range records {
		out.Rejected = append(out.Rejected, domain.RejectionEntry{
			RowNumber: records[i].RowNumber,
			Data:      records[i].Values,
			Code:      domain.CodeServerError,
			Error:     msg,
			Source:    domain.SourceRemote,
		})
	}
	return out
}

func (r *Reconciler) apply(batch []*pending, items []any, v verdict) {
	for _, raw := range items {
		item, ok := parseItem(raw)
		if !ok {
			r.log.WithField("item", raw).Warn("ignoring non-object response item")
			continue
		}
		p := r.match(batch, item)
		if p == nil {
			r.log.WithField("data", item.data).Warn("response item does not match any submitted row")
			continue
		}
		p.verdict = v
		p.id = item.id
		p.errors = item.errors
	}
}

// match finds the first unclaimed record with the item's natural key, then
// falls back to any single identifying field.
func (r *Reconciler) match(batch []*pending, item responseItem) *pending {
	itemKey := r.schema.Key(func(f string) string { return item.data[f] })
	for _, p := range batch {
		if p.verdict == verdictUnmentioned && r.recordKey(p) == itemKey {
			return p
		}
	}

	for _, f := range r.fallbackFields() {
		want := schema.NormalizeValue(item.data[f])
		if want == "" {
			continue
		}
		for _, p := range batch {
			if p.verdict == verdictUnmentioned && schema.NormalizeValue(stringify(p.record.Values[f])) == want {
				return p
			}
		}
	}
	return nil
}

func (r *Reconciler) fallbackFields() []string {
	fields := append([]string{}, r.schema.KeyFields...)
	if _, ok := r.schema.Field(schema.FieldProductCode); ok && !contains(fields, schema.FieldProductCode) {
		fields = append(fields, schema.FieldProductCode)
	}
	return fields
}

func (r *Reconciler) recordKey(p *pending) string {
	return r.schema.Key(func(f string) string { return stringify(p.record.Values[f]) })
}

func (r *Reconciler) isEmptyMainCategoryFalsePositive(p *pending) bool {
	if !r.opts.EmptyMainCategoryWorkaround || r.schema.Kind != domain.ImportKindCategories {
		return false
	}
	if stringify(p.record.Values[schema.FieldSubcategory]) != "" {
		return false
	}
	return onlyEmptyMainCategoryDuplicates(p.errors)
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
