// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package completion implements the chat completion transport.
//
// Each call is a single synchronous POST carrying the full transcript:
//
//	POST <API_URL>
//	Authorization: Bearer <API_KEY>
//	Content-Type: application/json
//
//	{"model": "...", "messages": [{"role": "user", "content": "hi"}],
//	 "temperature": 0.8, "stream": false}
//
// There is no retry and no streaming. Failures are reported as:
//
//   - *StatusError (matches ErrBadStatus): non-2xx, body not parsed
//   - ErrEmptyResponse: the choices array was empty
//   - ErrNetwork: the endpoint could not be reached
//   - ErrDecode: the body could not be decoded
//
// Context cancellation is returned as the context's error.
package completion
