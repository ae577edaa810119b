/*
Package session keeps the results loaded by the long-running servers.

A Manager opens sources, stores the resulting trees by root UUID and serializes
replacement and removal of the same UUID. Concurrent loads of one source share
a single build, so the HTTP and MCP adapters can be hit by many clients at once
without reading an archive twice.
*/
package session
