// Package health reports whether the cache's Redis backend can serve
// requests.
//
// A StoreChecker pings Redis and loads the get/put scripts; a
// BreakerChecker reports the state of the store circuit breaker. An
// Aggregator runs several checkers concurrently and combines their results,
// and the HTTP handlers expose them for liveness and readiness probes.
//
//	agg := health.NewAggregator()
//	agg.Register("redis", health.NewStoreChecker(client, health.StoreCheckerConfig{}))
//	agg.Register("circuit", health.NewBreakerChecker(cb))
//	health.RegisterHandlers(mux, agg)
package health
