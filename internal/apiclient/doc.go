// Package apiclient talks to the task backend REST API.
//
// Every request passes through a bearer transport that reads the token from a
// credential.Session and, when one is stored, sets
//
//	Authorization: Bearer <token>
//
// Requests are sent unmodified when no token is stored.
//
// # Authorization failures
//
// Non-2xx responses are returned as *ResponseError. A 401 also signs the
// session out and calls the configured UnauthorizedHandler before the error
// reaches the caller, so the caller still observes the rejected call:
//
//	tasks, err := client.ListTasks(ctx)
//	switch apiclient.Classify(err) {
//	case apiclient.OutcomeUnauthorized:
//		// token already evicted; navigate to the login view
//	case apiclient.OutcomeFailure:
//		// caller-specific handling
//	}
package apiclient
