/*
Package checkin turns a scanned QR payload into a validated, geofenced,
rate-limited attendance event.

The service composes the engine's collaborators into two public operations:

	// Validate a scanned token
	outcome, err := svc.ValidateToken(ctx, payload, userID)

	// Process a check-in/out attempt
	result, err := svc.ProcessCheckIn(ctx, payload, employeeID, location)

A scan flows through the local rate limiter, the token hasher and the retry
layer before reaching the backend; the check-in path additionally runs the
geofence validator first. When the device is offline the attempt is captured
by the offline queue instead of failing, and the caller receives an explicit
queued outcome.

Callers are expected to render three distinct states: immediate rejection
(bad, expired or geofenced QR), deferred (queued offline, delivered later)
and transient failure (ask the user to rescan). Collapsing these into one
generic error loses information the protocol deliberately preserves.
*/
package checkin
