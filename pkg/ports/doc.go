/*
Package ports defines the driven ports (interfaces) of provview.

These interfaces decouple the builder and servers from concrete storage, so the
same traversal runs over a zip archive, an extracted directory or an in-memory
fixture.

# Key Interfaces

  - Loader: resolves action and artifact documents by UUID.
  - ResultStore: holds loaded results for the servers.
*/
package ports
