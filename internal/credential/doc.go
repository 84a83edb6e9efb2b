// Package credential persists the single authentication token that gates the
// task views and authorizes backend API calls.
//
// The token always lives under TokenKey. Each backend derives its storage
// location from that key, so login, header injection and eviction can never
// disagree about where the token is:
//   - File: <dir>/auth_token with atomic writes and 0600 permissions
//   - Keyring: OS-native credential storage, user TokenKey
//   - Env: read-only TASKGATE_AUTH_TOKEN (external secret management)
//   - Memory: process-local cell, lost on exit
//
// Callers should not use a Store directly. Session wraps one and is the only
// value handed to the API client and the route guard.
package credential
