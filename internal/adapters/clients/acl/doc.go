// Package acl is the anti-corruption layer between the feed gateway and the
// upstream quote API.
//
// Each adapter embeds [BaseAdapter], declares the upstream's wire shapes as
// unexported types and translates them into domain values. Nothing outside
// this package sees an upstream DTO.
//
// Upstream failures become domain errors through [MapHTTPError]:
//   - 401 becomes [domain.ErrUnauthenticated]
//   - 403 becomes [domain.ErrForbidden]
//   - 404 becomes [domain.ErrNotFound]
//   - 409 becomes [domain.ErrConflict]
//   - other 4xx become [domain.ErrValidation], carrying the upstream's
//     {"error": "..."} message
//   - 5xx, 429, transport failures and an open circuit become
//     [domain.ErrUnavailable]
package acl
