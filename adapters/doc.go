// Package adapters groups converters between toolset tools and
// the tool calling models of the LLM provider SDKs.
//
// Each adapter converts tools into the SDK tool parameters,
// extracts tool calls from the SDK response, and dispatches them
// through the tools returned by toolset.Toolset.GetTools.
package adapters
