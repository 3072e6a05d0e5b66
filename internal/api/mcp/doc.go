/*
Package mcp exposes the catalogue meta-operations as Model Context Protocol
tools over stdio.

Tools are derived from the engine's service definition, one per
meta-operation, and their arguments are routed through the engine's untyped
router exactly as the HTTP surface does.
*/
package mcp
