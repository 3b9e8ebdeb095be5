// Package session stores chat histories between requests.
//
// Store is the contract the runner depends on; InMemoryStore is the only
// backend shipped here. Other backends (Redis, SQL, ...) can live in
// sub‑packages without changing calling code.
package session
