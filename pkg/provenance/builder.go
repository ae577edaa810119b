package provenance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/provview/pkg/domain"
	"github.com/aretw0/provview/pkg/ports"
)

// builder owns all state of one Build call. Traversal is sequential: a
// sibling is visited only after the previous sibling's ancestry is complete,
// so the seen set and the height map need no locking.
type builder struct {
	logger *slog.Logger
	hooks  domain.Hooks

	loader ports.Loader

	seen      map[string]bool
	heights   map[string]int
	documents map[string]domain.Value

	actions     []domain.ActionNode
	actionIndex map[string]int
	results     []domain.ResultNode
	edges       []domain.Edge
	edgeSeen    map[string]bool

	collections     []*domain.Collection
	collectionIndex map[string]*domain.Collection

	metadata     []domain.MetadataUsage
	metadataSeen map[string]bool
	truncations  []domain.Truncation
	internals    map[string][]domain.InternalRecord
}

// target is one reference to a result: from an input or parameter of dest,
// or the root when dest is empty.
type target struct {
	uuid         string
	param        string
	dest         string
	key          string
	inCollection bool
}

func (t target) isRoot() bool { return t.dest == "" }

// Build reconstructs the provenance tree of loader's root result.
func Build(ctx context.Context, loader ports.Loader, opts ...Option) (*Tree, error) {
	b := defaultBuilder()
	for _, opt := range opts {
		opt(b)
	}
	b.loader = loader
	b.seen = make(map[string]bool)
	b.heights = make(map[string]int)
	b.documents = make(map[string]domain.Value)
	b.actionIndex = make(map[string]int)
	b.edgeSeen = make(map[string]bool)
	b.collectionIndex = make(map[string]*domain.Collection)
	b.metadataSeen = make(map[string]bool)
	b.internals = make(map[string][]domain.InternalRecord)

	root := loader.RootUUID()
	if root == "" {
		return nil, fmt.Errorf("%w: no root result", domain.ErrInvalidArchive)
	}

	height, err := b.visit(ctx, target{uuid: root})
	if err != nil {
		return nil, err
	}
	b.collapseSingletons()

	tree := &Tree{
		Root:        root,
		Height:      height,
		Actions:     b.actions,
		Edges:       b.edges,
		Metadata:    b.metadata,
		Truncations: b.truncations,
		documents:   b.documents,
	}
	for _, c := range b.collections {
		tree.Collections = append(tree.Collections, *c)
	}
	if len(b.internals) > 0 {
		tree.Internals = b.internals
	}
	tree.Results, tree.Width = layout(b.results)

	b.logger.Debug("provenance tree built",
		"root", root,
		"height", tree.Height,
		"actions", len(tree.Actions),
		"results", len(tree.Results),
		"truncated", len(tree.Truncations))
	return tree, nil
}

// visit materializes t and everything upstream of it that has not been seen
// yet, and returns the depth of the action that produced it.
func (b *builder) visit(ctx context.Context, t target) (int, error) {
	rec, err := b.loadAction(ctx, t.uuid)
	if err != nil {
		if isContextErr(err) {
			return 0, err
		}
		if t.isRoot() {
			return 0, fmt.Errorf("%w: root action: %v", domain.ErrInvalidArchive, err)
		}
		return b.truncate(ctx, t, err), nil
	}

	resultID := t.uuid
	kind := domain.NodeKindResult
	if t.inCollection {
		resultID = collectionID(t.param, t.dest, rec.ExecutionID)
		kind = domain.NodeKindCollection
	}

	if !t.isRoot() {
		b.addEdge(t.param, resultID, t.dest)
	}

	if t.inCollection {
		known, err := b.collect(ctx, t, resultID, rec)
		if err != nil {
			return 0, err
		}
		if known {
			// first member's depth stands for the whole collection
			return b.heights[rec.ExecutionID], nil
		}
	} else {
		if b.seen[t.uuid] {
			return b.heights[rec.ExecutionID], nil
		}
		artifact, err := b.loadArtifact(ctx, t, rec)
		if err != nil {
			if isContextErr(err) || t.isRoot() {
				return 0, err
			}
			return b.truncate(ctx, t, fmt.Errorf("metadata unavailable: %w", err)), nil
		}
		b.seen[t.uuid] = true
		b.documents[t.uuid] = artifact
	}

	b.recordMetadata(rec, t.uuid)

	if b.seen[rec.ExecutionID] {
		height := b.heights[rec.ExecutionID]
		b.addResult(resultID, kind, rec.ExecutionID, height)
		return height, nil
	}

	b.seen[rec.ExecutionID] = true
	b.documents[rec.ExecutionID] = rec.Document
	b.actionIndex[rec.ExecutionID] = len(b.actions)
	b.actions = append(b.actions, domain.ActionNode{
		ID:     rec.ExecutionID,
		Type:   rec.Type,
		Plugin: rec.Plugin,
		Action: rec.Action,
	})

	if rec.AliasOf != "" {
		if err := b.resolveAlias(ctx, rec); err != nil {
			return 0, err
		}
	}

	depth := 1
	if rec.HasHistory() {
		for _, in := range rec.Inputs {
			for _, ref := range domain.InputRefs(in.Value) {
				d, err := b.visit(ctx, target{
					uuid:         ref.UUID,
					param:        in.Name,
					dest:         rec.ExecutionID,
					key:          ref.CollectionKey,
					inCollection: ref.InCollection,
				})
				if err != nil {
					return 0, err
				}
				depth = max(depth, d+1)
			}
		}
		for _, p := range rec.Parameters {
			for _, id := range domain.ParameterArtifacts(p.Value) {
				d, err := b.visit(ctx, target{uuid: id, param: p.Name, dest: rec.ExecutionID})
				if err != nil {
					return 0, err
				}
				depth = max(depth, d+1)
			}
		}
	}

	if _, ok := b.heights[rec.ExecutionID]; !ok {
		b.heights[rec.ExecutionID] = depth
	}
	height := b.heights[rec.ExecutionID]
	b.actions[b.actionIndex[rec.ExecutionID]].Height = height

	b.logger.Debug("action expanded",
		"execution", rec.ExecutionID,
		"type", rec.Type,
		"plugin", rec.Plugin,
		"action", rec.Action,
		"height", height)
	if b.hooks.OnActionVisited != nil {
		b.hooks.OnActionVisited(ctx, &domain.ActionEvent{
			ExecutionID: rec.ExecutionID,
			Type:        rec.Type,
			Plugin:      rec.Plugin,
			Action:      rec.Action,
			Height:      height,
		})
	}

	b.addResult(resultID, kind, rec.ExecutionID, height)
	return height, nil
}

func (b *builder) loadAction(ctx context.Context, uuid string) (domain.ActionRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.ActionRecord{}, err
	}
	doc, err := b.loader.LoadAction(ctx, uuid)
	if err != nil {
		return domain.ActionRecord{}, err
	}
	rec, err := domain.DecodeAction(doc)
	if err != nil {
		return domain.ActionRecord{}, fmt.Errorf("action of %s: %w", uuid, err)
	}
	return rec, nil
}

// loadArtifact returns the metadata document of t with the producing
// action's environment injected.
func (b *builder) loadArtifact(ctx context.Context, t target, rec domain.ActionRecord) (domain.Value, error) {
	doc, err := b.loader.LoadArtifact(ctx, t.uuid)
	if err != nil {
		if t.isRoot() && !isContextErr(err) {
			return domain.Value{}, fmt.Errorf("%w: root metadata: %v", domain.ErrInvalidArchive, err)
		}
		return domain.Value{}, err
	}
	return withEnvironment(doc, rec), nil
}

func withEnvironment(doc domain.Value, rec domain.ActionRecord) domain.Value {
	if doc.Kind() != domain.KindMapping || rec.Environment.IsNull() {
		return doc
	}
	return doc.With("environment", rec.Environment)
}

// collect adds a collection member and reports whether the collection was
// already known.
func (b *builder) collect(ctx context.Context, t target, id string, rec domain.ActionRecord) (bool, error) {
	artifact, err := b.loadArtifact(ctx, t, rec)
	if err != nil {
		if isContextErr(err) {
			return false, err
		}
		// the member stays in the collection with a null document
		b.recordTruncation(ctx, domain.Truncation{
			ResultID:    t.uuid,
			Param:       t.param,
			Destination: t.dest,
			Reason:      "metadata unavailable: " + err.Error(),
		}, err)
		artifact = domain.Null()
	}

	c, known := b.collectionIndex[id]
	if !known {
		c = &domain.Collection{ID: id}
		b.collectionIndex[id] = c
		b.collections = append(b.collections, c)
		b.seen[id] = true
		b.documents[id] = domain.Mapping()
	}
	c.Elements = append(c.Elements, domain.CollectionElement{Key: t.key, UUID: t.uuid})
	b.documents[id] = b.documents[id].With(t.key, artifact)
	return known, nil
}

// truncate records a result whose provenance or metadata could not be
// loaded. It is drawn as a leaf at row 1 with no producing action, and
// nothing upstream of it is visited.
func (b *builder) truncate(ctx context.Context, t target, cause error) int {
	b.addEdge(t.param, t.uuid, t.dest)
	if b.seen[t.uuid] {
		return 1
	}
	b.seen[t.uuid] = true
	b.documents[t.uuid] = domain.Null()
	b.addResult(t.uuid, domain.NodeKindMissing, "", 1)
	b.recordTruncation(ctx, domain.Truncation{
		ResultID:    t.uuid,
		Param:       t.param,
		Destination: t.dest,
		Reason:      cause.Error(),
	}, cause)
	return 1
}

func (b *builder) recordTruncation(ctx context.Context, tr domain.Truncation, cause error) {
	b.truncations = append(b.truncations, tr)
	b.logger.Warn("provenance branch truncated",
		"result", tr.ResultID,
		"param", tr.Param,
		"destination", tr.Destination,
		"error", cause)
	if b.hooks.OnBranchTruncated != nil {
		b.hooks.OnBranchTruncated(ctx, &domain.TruncationEvent{Truncation: tr, Err: cause})
	}
}

// recordMetadata notes each metadata file passed to rec, once per execution.
func (b *builder) recordMetadata(rec domain.ActionRecord, resultID string) {
	for _, p := range rec.Parameters {
		file, ok := domain.MetadataFile(p.Value)
		if !ok {
			continue
		}
		key := rec.ExecutionID + " " + file
		if b.metadataSeen[key] {
			continue
		}
		b.metadataSeen[key] = true
		b.metadata = append(b.metadata, domain.MetadataUsage{
			Plugin:      rec.Plugin,
			Action:      rec.Action,
			ExecutionID: rec.ExecutionID,
			File:        file,
			ResultID:    resultID,
		})
	}
}

func (b *builder) addEdge(param, source, dest string) {
	id := edgeID(param, source, dest)
	if b.edgeSeen[id] {
		return
	}
	b.edgeSeen[id] = true
	b.edges = append(b.edges, domain.Edge{ID: id, Param: param, Source: source, Target: dest})
}

func (b *builder) addResult(id, kind, parent string, row int) {
	b.results = append(b.results, domain.ResultNode{ID: id, Kind: kind, Parent: parent, Row: row})
}

// collapseSingletons turns collections with one member into plain results,
// unless that member is already a node of its own.
func (b *builder) collapseSingletons() {
	kept := b.collections[:0]
	for _, c := range b.collections {
		if len(c.Elements) != 1 || b.seen[c.Elements[0].UUID] {
			kept = append(kept, c)
			continue
		}
		member := c.Elements[0]

		for i := range b.results {
			if b.results[i].ID == c.ID {
				b.results[i].ID = member.UUID
				b.results[i].Kind = domain.NodeKindResult
			}
		}
		for i := range b.edges {
			if b.edges[i].Source == c.ID {
				b.edges[i].Source = member.UUID
				b.edges[i].ID = edgeID(b.edges[i].Param, member.UUID, b.edges[i].Target)
			}
		}
		doc, _ := b.documents[c.ID].Get(member.Key)
		b.documents[member.UUID] = doc
		delete(b.documents, c.ID)
		delete(b.collectionIndex, c.ID)
		b.seen[member.UUID] = true
	}
	b.collections = kept
}

func collectionID(param, dest, source string) string {
	return param + ":" + dest + ":" + source
}

func edgeID(param, source, dest string) string {
	return param + "_" + source + "_to_" + dest
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
