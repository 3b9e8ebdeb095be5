// Package agent contains the agent facade: the Agent interface and its two
// implementations.
//
//  1. LLMAgent talks to a model.Model. With a ToolConfig every request runs
//     through a flow.ToolLoop; otherwise it is a single or streaming call.
//  2. APIAgent posts to a plain HTTP endpoint through model/endpoint, using
//     a Codec to build payloads and extract answers.
//
// Both return a Response holding either a complete message or a stream of
// text fragments. Persistence of the conversation is left to the caller (see
// package runner).
package agent
