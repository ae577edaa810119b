/*
Package domain contains the core types shared by the provenance builder, the
query language and the adapters.

It is kept free of I/O. Documents read from an archive are represented as a
closed tagged Value (null, bool, number, string, sequence, mapping) so the
search and traversal code can match on kinds exhaustively.

# Key Entities

  - Value: a schema-less document value with ordered mappings.
  - ActionRecord: the fields of an action.yaml the builder consumes.
  - ActionNode, ResultNode, Edge, Collection: the reconstructed graph.
  - Hooks: optional observers notified while a tree is built.
*/
package domain
