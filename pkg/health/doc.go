// Package health serves liveness and readiness probes.
//
// Readiness runs a set of named [CheckFunc]s concurrently under a single
// timeout and reports each one:
//
//	r.Get("/health", health.ReadinessHandler(health.Checks{
//	    "postgres": db.Healthcheck(pool),
//	    "redis":    redis.Healthcheck(client),
//	    "jobs":     job.Healthcheck(manager),
//	}, health.WithLogger(log)))
//
// Responses are plain text ("OK" / "Service Unavailable") unless the
// client asks for JSON with ?format=json or an Accept header:
//
//	{"status":"unhealthy","checks":{"redis":{"status":"unhealthy","error":"connection refused","latency_ms":3}}}
package health
