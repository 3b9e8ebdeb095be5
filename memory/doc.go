// Package memory contains a keyword based document store usable as a
// prompt.Retriever. Plug it into agent.LLMAgentOptions.Retriever to append
// matching documents to the system prompt of every request.
//
// Production setups should implement prompt.Retriever on top of a vector
// database or search service instead.
package memory
