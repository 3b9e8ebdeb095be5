// Package runner wires an agent.Agent to a session.Store.
//
// A Runner fetches the chat history for (user, session, agent), calls the
// agent and persists the user input together with the answer. For tool
// loop runs the whole exchange (replies and tool results) is stored, so the
// next request resumes from a consistent conversation.
package runner
