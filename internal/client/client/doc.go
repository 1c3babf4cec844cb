// Package client is the request substrate shared by registration, uploads
// and notifications.
//
// # Overview
//
//  1. Parameter encoding (MakeParameter, SecurityParameters, Codec): request
//     bodies are ordered "key=value&" fragments built by hand. Values are not
//     escaped, so callers pass pre-sanitized identifiers.
//  2. Connections (Factory, Connection): every request is a POST with
//     caching disabled and keep-alive requested. The body is streamed, so a
//     large file never sits in memory, and a Connection can be dropped mid
//     body.
//
// # Error Handling
//
// Failures are sentinel errors matched with errors.Is: ErrMalformedURL,
// ErrNetwork, ErrInvalidServer, ErrUploadAborted, ErrBatchDeadline and
// ErrLocalStore. ResponseCode maps them onto the numeric codes the
// participant sees (0, 502, 404, -1, -2). A Write that fails because the
// server has already answered returns ErrEarlyResponse instead.
//
// # Timeouts
//
// Connecting is bounded by the connect timeout (3s by default). Waiting for
// the response, and any write that makes no progress, is bounded by the read
// timeout (5s by default).
package client
