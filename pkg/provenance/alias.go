package provenance

import (
	"context"

	"github.com/aretw0/provview/pkg/domain"
)

// resolveAlias walks the inner steps of a pipeline action and attributes
// their documents and load errors to the outer execution. The walk stops at
// artifacts the outer action itself consumed and emits no nodes or edges.
func (b *builder) resolveAlias(ctx context.Context, outer domain.ActionRecord) error {
	boundary := make(map[string]bool)
	for _, id := range outer.ArtifactUUIDs() {
		boundary[id] = true
	}
	seen := make(map[string]bool)
	return b.walkAlias(ctx, outer.ExecutionID, outer.AliasOf, boundary, seen)
}

func (b *builder) walkAlias(ctx context.Context, outerID, uuid string, boundary, seen map[string]bool) error {
	if boundary[uuid] || seen[uuid] {
		return nil
	}
	seen[uuid] = true
	if err := ctx.Err(); err != nil {
		return err
	}

	record := domain.InternalRecord{ResultID: uuid}
	doc, err := b.loader.LoadAction(ctx, uuid)
	if err != nil {
		if isContextErr(err) {
			return err
		}
		record.Error = err.Error()
		b.addInternal(outerID, record)
		return nil
	}
	inner, err := domain.DecodeAction(doc)
	if err != nil {
		record.Action = doc
		record.Error = err.Error()
		b.addInternal(outerID, record)
		return nil
	}
	record.ExecutionID = inner.ExecutionID
	record.Action = inner.Document

	artifact, err := b.loader.LoadArtifact(ctx, uuid)
	switch {
	case isContextErr(err):
		return err
	case err != nil:
		record.Error = err.Error()
	default:
		record.Artifact = withEnvironment(artifact, inner)
	}
	b.addInternal(outerID, record)

	if !inner.HasHistory() {
		return nil
	}
	for _, id := range inner.ArtifactUUIDs() {
		if err := b.walkAlias(ctx, outerID, id, boundary, seen); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) addInternal(outerID string, record domain.InternalRecord) {
	if record.Error != "" {
		b.logger.Debug("pipeline internal step unavailable",
			"execution", outerID,
			"result", record.ResultID,
			"error", record.Error)
	}
	b.internals[outerID] = append(b.internals[outerID], record)
}
