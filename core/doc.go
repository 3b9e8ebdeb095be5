// Package core defines the conversation data model shared by every other
// package: roles, the closed set of content blocks (text, tool use, tool
// result), messages and the append-only conversation used by the tool loop.
//
// Messages are values. A message's role cannot change after construction and
// NewMessage refuses empty content, so every Message obtained through the
// constructors or JSON decoding satisfies both invariants.
package core
