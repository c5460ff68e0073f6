// Package delivery turns send requests into logged deliveries.
//
// [Service.Submit] composes the email through the mailer first, so unknown
// kinds, missing input and unresolved recipients fail the request before
// anything is written. The composed email is then recorded in the
// delivery log and either inserted as a River job or sent inline when no
// queue is configured. Workers run [SendEmailTask], which calls
// [Service.Deliver]; a failed attempt keeps the delivery queued until the
// last attempt marks it failed.
//
// [PruneTask] and [WarmTemplatesTask] are periodic jobs for the worker.
package delivery
