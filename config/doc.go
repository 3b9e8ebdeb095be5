// Package config loads agent definitions from YAML.
//
// An AgentConfig names the provider ("anthropic", "openai" or "http") and
// carries the inference, prompt and endpoint settings. NewAgent turns it
// into an agent.Agent; tools and custom models are supplied in code through
// BuildOptions. ${VAR} references are expanded from the environment before
// parsing, so secrets can stay out of the file.
package config
