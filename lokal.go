// Package lokal provides a translation resolution and caching engine.
//
// Lokal resolves (key, locale) pairs to localized strings with
// pluralization, variable interpolation, single-hop locale fallback, and
// bulk retrieval, backed by a persistent store and a two-tier cache
// (process-local memory plus a persisted snapshot). Resolution never
// fails: a key with no translation anywhere resolves to itself.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/mahmut0ff/lokal"
//	    "github.com/mahmut0ff/lokal/cache"
//	    "github.com/mahmut0ff/lokal/store"
//	)
//
//	func main() {
//	    db, err := store.NewDynamoStore(store.DynamoConfig{
//	        Client: client,
//	        Table:  "translations",
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    resolver := lokal.NewResolver(db,
//	        lokal.WithCache(cache.NewTieredCache(cache.NewMemoryCache(cache.MemoryConfig{}), db)),
//	    )
//
//	    res := resolver.Resolve(context.Background(), lokal.ResolveRequest{
//	        Key:    "cart.items",
//	        Locale: "ru",
//	        Vars:   map[string]any{"name": "Айбек"},
//	    })
//	    fmt.Println(res.Value)
//	}
package lokal
