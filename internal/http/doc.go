// Package http provides HTTP handlers and middleware for the office booking API.
//
// The router exposes the following endpoints:
//   - GET /floor-plans, POST /floor-plans, GET /floor-plans/{id},
//     DELETE /floor-plans/{id}: floor plan catalog endpoints exchanging the
//     `floorPlanDTO` payload defined in floorplan_handler.go. POST performs a
//     create-or-update keyed on the optional `floor_id` field; structural
//     responses include the cascade summary for any removed resources.
//   - GET /bookings, POST /bookings, DELETE /bookings/{id}?kind=room|desk:
//     booking ledger endpoints exchanging the `bookingDTO` payload defined in
//     booking_handler.go. Listing returns the caller's active bookings joined
//     with resource and floor details, ascending by start time.
//   - GET /recommendations: ranked availability search. Query parameters:
//     `kind`, `start`, `end` (RFC 3339), `min_capacity`, optional `floor`.
//   - GET /notifications, POST /notifications/{id}/dismiss: cancellation
//     notice endpoints defined in notification_handler.go.
//
// Identity arrives via the `X-User-ID` and `X-User-Role` headers set by the
// fronting auth proxy; the identity middleware translates them into an
// application.Principal. Request/response DTOs live alongside their
// respective handlers so tests and documentation share the same ground truth.
package http
