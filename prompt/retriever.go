package prompt

import (
	"context"
	"fmt"
)

// Retriever looks up context for a user utterance and returns it as one
// combined text. Search and ranking live behind this boundary.
type Retriever interface {
	RetrieveAndCombineResults(ctx context.Context, text string) (string, error)
}

// RetrieverFunc adapts a function to Retriever.
type RetrieverFunc func(ctx context.Context, text string) (string, error)

// RetrieveAndCombineResults implements Retriever.
func (f RetrieverFunc) RetrieveAndCombineResults(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// RetrieverError wraps a failed retrieval.
type RetrieverError struct {
	Err error
}

func (e *RetrieverError) Error() string { return fmt.Sprintf("retriever: %v", e.Err) }

// Unwrap returns the retriever's error.
func (e *RetrieverError) Unwrap() error { return e.Err }
