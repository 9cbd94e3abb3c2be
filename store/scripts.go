package store

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var (
	//go:embed lua/get.lua
	getSource string

	//go:embed lua/put.lua
	putSource string

	getScript = redis.NewScript(getSource)
	putScript = redis.NewScript(putSource)
)

// LoadScripts loads both scripts into the server script cache. Running a
// script loads it on demand, so this is only needed to verify up front that
// the server accepts them.
func LoadScripts(ctx context.Context, c redis.Scripter) error {
	for name, s := range map[string]*redis.Script{"get": getScript, "put": putScript} {
		if err := s.Load(ctx, c).Err(); err != nil {
			return fmt.Errorf("store: load %s script: %w", name, err)
		}
	}
	return nil
}

// ScriptHashes returns the SHA1 digest of each script, keyed by name. These
// are the digests EVALSHA sends.
func ScriptHashes() map[string]string {
	return map[string]string{"get": getScript.Hash(), "put": putScript.Hash()}
}
