// Package composio provides the HTTP client for the remote action platform:
// listing action schemas by filter and executing an action on behalf of an entity.
package composio
