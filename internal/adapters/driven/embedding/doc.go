// Package embedding holds helpers shared by the embedding model adapters:
// request rate limiting and model result validation.
//
// Adapters live in sub-packages:
//   - ollama: local Ollama server
//   - openai: OpenAI compatible APIs
package embedding
