// Package http provides HTTP handlers and middleware for the meeting poll API.
//
// The router exposes the following endpoints under /api/v1:
//   - POST /sessions: creates a poll session. Body: the `createSessionRequest`
//     payload defined in session_handler.go. Fixed sessions carry their
//     timeslots inline; dynamic and weekly sessions carry the rules window.
//   - GET /sessions/{id}: returns the full session view including timeslots,
//     per-slot tallies, and each slot's start and end rendered both as UTC
//     instants and as Jalali civil dates in Tehran time.
//   - POST /sessions/{id}/timeslots: proposes a timeslot on an open-shape
//     session. An exact duplicate collapses into the existing slot and is
//     answered with 200 instead of 201.
//   - DELETE /sessions/{id}/timeslots/{timeslotID}: removes a vote-free
//     proposed slot, honoring the password set at proposal time.
//   - POST /sessions/{id}/vote: replaces one voter's vote set wholesale.
//   - GET /admin/stats: cross-session counts.
//
// GET /health reports backing store reachability outside the versioned prefix.
//
// Error responses carry a machine-readable error_code plus a Persian message;
// request/response DTOs live alongside their respective handlers.
package http
