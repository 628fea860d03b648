// Package auth provides API key middleware for unitconv-server.
//
// APIKey(mode, header, key) wraps an http.Handler. When mode != "apikey" or
// key == "", every request passes through (local development with auth
// disabled). Otherwise the key is read from the named header, or from the
// api_key query parameter for WebSocket clients that cannot set headers,
// and a missing or wrong key gets 401 with a JSON error body.
package auth
