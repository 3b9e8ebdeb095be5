// Package model defines the provider-agnostic transport contract used by
// agents to talk to a language model, plus helpers shared by the concrete
// adapters.
//
// Core goals:
//   - One request shape (Request) regardless of the provider behind it
//   - Two call forms: Converse (single response) and ConverseStream (lazy text fragments)
//   - A Stream type with explicit Close so the underlying read handle is
//     released on completion, abandonment and error alike
//   - Typed transport errors (TransportError, ErrEmptyResponse)
//   - A scripted MockModel for tests and examples
//
// Providers live in sub packages (anthropic, openai) and the generic HTTP
// endpoint adapter lives in model/endpoint.
package model
