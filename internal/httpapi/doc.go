// Package httpapi exposes rendering and sending over HTTP.
//
//	GET  /health                    readiness checks (JSON with ?format=json)
//	GET  /health/live               liveness
//	GET  /v1/kinds                  configured email kinds
//	POST /v1/emails/{kind}/render   {"variables":{...}} -> html, text, subject, to, degraded
//	POST /v1/emails/{kind}/send     202 with delivery_id when queued, 200 when sent inline
//	GET  /v1/deliveries/{id}        delivery log entry
//
// Errors share one body, {"error":{"code","message","request_id"}}.
// Missing input is 400, unknown kinds and deliveries are 404, an
// unresolvable recipient is 422 and a missing template is 500 because it
// is a deployment fault.
package httpapi
