package domain

// Result node kinds.
const (
	NodeKindResult     = "result"
	NodeKindCollection = "collection"
	NodeKindMissing    = "missing"
)

// ActionNode is one execution in the provenance graph.
type ActionNode struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Plugin string `json:"plugin,omitempty"`
	Action string `json:"action,omitempty"`

	// Height is the memoized depth of the action.
	Height int `json:"height"`
}

// ResultNode is an artifact, or a collection of artifacts, produced by an action.
// Parent is empty for branches whose provenance was missing.
type ResultNode struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Parent string `json:"parent,omitempty"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

// Edge connects a result node to the action that consumed it under Param.
type Edge struct {
	ID     string `json:"id"`
	Param  string `json:"param"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// CollectionElement is one keyed member of a collection.
type CollectionElement struct {
	Key  string `json:"key"`
	UUID string `json:"uuid"`
}

// Collection groups the results passed together under one input name.
// Elements keep insertion order.
type Collection struct {
	ID       string              `json:"id"`
	Elements []CollectionElement `json:"elements"`
}

// Representative is the first element, used for parent and depth purposes.
func (c *Collection) Representative() CollectionElement {
	if len(c.Elements) == 0 {
		return CollectionElement{}
	}
	return c.Elements[0]
}

// Truncation records a branch that stopped early because a document was missing.
type Truncation struct {
	ResultID    string `json:"result_id"`
	Param       string `json:"param,omitempty"`
	Destination string `json:"destination,omitempty"`
	Reason      string `json:"reason"`
}

// InternalRecord is a step inside a pipeline alias, attributed to the outer action.
type InternalRecord struct {
	ExecutionID string `json:"execution_id,omitempty"`
	ResultID    string `json:"result_id"`
	Action      Value  `json:"action"`
	Artifact    Value  `json:"artifact"`
	Error       string `json:"error,omitempty"`
}

// MetadataUsage records a metadata file passed to an action.
type MetadataUsage struct {
	Plugin      string `json:"plugin"`
	Action      string `json:"action"`
	ExecutionID string `json:"execution_id"`
	File        string `json:"file"`
	ResultID    string `json:"result_id"`
}
