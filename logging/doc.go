// Package logging provides the minimal logging interface used across agentcore
// and adapters for it.
//
// The Logger interface carries the four leveled methods (Debug, Info, Warn,
// Error) with slog style key/value arguments. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - With for attaching request scoped attributes
//   - LogLLMCall / LogToolCall helpers with a stable attribute set
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.New(&logging.Config{Level: logging.LevelDebug, Format: "text", Output: os.Stderr})
//	agent, _ := agent.NewLLMAgent("Tech Agent", "Answers technical questions", llm, func(o *agent.LLMAgentOptions) {
//		o.Logger = logger
//	})
package logging
