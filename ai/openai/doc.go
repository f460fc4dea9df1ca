// Package openai implements the ai.Embedder interface over OpenAI-compatible
// embedding APIs (OpenAI, Ollama, LocalAI, vLLM and similar).
//
// The implementation uses langchaingo's openai client, so any service that
// speaks the /v1/embeddings protocol works unchanged.
package openai
