// Package tools defines the tool contract shared by the toolset and agent runtimes: a named, described callable with a JSON parameters schema, and the callbacks observing its execution.
package tools
