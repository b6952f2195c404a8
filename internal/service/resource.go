package service

import (
	"context"
	"fmt"
	"time"

	"bizpilot/internal/core"
	"bizpilot/internal/log"
	"bizpilot/internal/store"
)

// Resource maps create/list/update/delete requests for one collection onto
// the document store. The same component serves tasks, clients and
// transactions; only the schema differs.
type Resource struct {
	schema core.Schema
	store  store.Store
	logger *log.Logger
	now    func() time.Time
}

func NewResource(schema core.Schema, st store.Store, logger *log.Logger) *Resource {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Resource{
		schema: schema,
		store:  st,
		logger: logger.WithComponent(log.ComponentService),
		now:    time.Now,
	}
}

// Collection returns the collection this resource manages.
func (r *Resource) Collection() string {
	return r.schema.Collection
}

// Create validates the schema's required fields, merges defaults under the
// caller-supplied values, stamps createdAt once and inserts. Fields outside
// the schema are dropped, and the caller can never assign an id.
func (r *Resource) Create(ctx context.Context, fields map[string]any) (string, error) {
	for _, f := range r.schema.Required {
		if core.IsEmpty(fields[f]) {
			return "", &core.ValidationError{Field: f}
		}
	}

	now := r.now()
	doc := r.schema.Defaults(now)
	for f := range doc {
		if v, ok := fields[f]; ok && !core.IsEmpty(v) {
			doc[f] = v
		}
	}
	for _, f := range r.schema.Required {
		doc[f] = fields[f]
	}
	doc["createdAt"] = now.UTC().Format(core.TimestampFormat)

	id, err := r.store.Insert(ctx, r.schema.Collection, doc)
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", r.schema.Collection, err)
	}

	r.logger.InfoContext(ctx, "Document created",
		log.FieldCollection, r.schema.Collection,
		log.FieldDocumentID, id,
		log.FieldOperation, log.OpCreate)
	return id, nil
}

// List returns every document of the collection, newest first.
func (r *Resource) List(ctx context.Context) ([]store.Document, error) {
	docs, err := r.store.List(ctx, r.schema.Collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.schema.Collection, err)
	}
	return docs, nil
}

// Update applies a partial merge. There is no required-field enforcement on
// updates; only id and createdAt are stripped from the patch, createdAt being
// immutable after creation.
func (r *Resource) Update(ctx context.Context, id string, fields map[string]any) error {
	patch := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == "id" || k == "createdAt" {
			continue
		}
		patch[k] = v
	}

	if err := r.store.Update(ctx, r.schema.Collection, id, patch); err != nil {
		return fmt.Errorf("update %s/%s: %w", r.schema.Collection, id, err)
	}

	r.logger.InfoContext(ctx, "Document updated",
		log.FieldCollection, r.schema.Collection,
		log.FieldDocumentID, id,
		log.FieldOperation, log.OpUpdate)
	return nil
}

// Delete removes the document by id. No cascading effects on other
// collections.
func (r *Resource) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, r.schema.Collection, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", r.schema.Collection, id, err)
	}

	r.logger.InfoContext(ctx, "Document deleted",
		log.FieldCollection, r.schema.Collection,
		log.FieldDocumentID, id,
		log.FieldOperation, log.OpDelete)
	return nil
}
