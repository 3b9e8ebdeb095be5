// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing messages, conversations and tool handlers.
// They are not intended for production usage.
package testutil
