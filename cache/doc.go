// Package cache provides the content-addressed result cache used by the
// Smart Caching Manager.
//
// Keys are derived from a logical identifier plus a parameter payload by
// hashing a canonical JSON form with SHA-256. Entries carry a per-entry TTL
// and the cache holds at most Policy.MaxEntries of them, evicting the least
// recently used entry once expired entries have been purged.
//
// # Basic Usage
//
//	c, err := cache.New[string](cache.DefaultPolicy())
//	if err != nil {
//	    return err
//	}
//
//	key := cache.MustKeyFor("nmap_scan.sim", map[string]any{"targets": []any{"10.0.0.1"}})
//	c.Set(key, "result")
//
//	if v, ok := c.Get(key); ok {
//	    fmt.Println(v)
//	}
//
//	fmt.Printf("%+v\n", c.Stats())
//
// Expiry is enforced lazily on Get and opportunistically on Set. A Sweeper
// may be run alongside the cache to purge entries nobody reads again.
package cache
