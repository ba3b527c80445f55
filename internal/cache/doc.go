// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

/*
Package cache provides a generic, thread-safe LRU cache with TTL expiry.

The API keeps one instance to memoize recommendations per grid cell:

	recos := cache.NewLRU[*recommend.Recommendation]("recommendation", 10000, 5*time.Minute)
	if rec, ok := recos.Get(gridID); ok {
	    return rec
	}
	rec, err := engine.Recommend(gridID, fv)
	if err == nil {
	    recos.Add(gridID, rec)
	}

Hits, misses, evictions and size are exported as cache_* metrics labelled
with the cache name. Reloading the grid features must Clear the cache.
*/
package cache
