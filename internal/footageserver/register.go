// Package footageserver exposes footage resolution as MCP tools.
package footageserver

import (
	"github.com/anatolykoptev/go_footage/internal/engine/footage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Deps is what the tools need from main.
type Deps struct {
	Env         *footage.Env
	Concurrency int // default per-job segment parallelism
}

// RegisterTools registers footage_resolve, footage_search and
// footage_cache_recent on server.
func RegisterTools(server *mcp.Server, d Deps) {
	registerResolve(server, d)
	registerSearch(server, d)
	registerCacheRecent(server, d)
}
