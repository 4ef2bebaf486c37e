// Package llms provides the provider neutral function calling types:
// tool definitions passed to a model, tool calls issued by a model
// and the responses returned to it.
//
// Provider specific conversions live in the adapters packages.
package llms
