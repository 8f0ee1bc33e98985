package alert

import "fmt"

// TransportError wraps a fault that kept a request from getting a response:
// connection refused, DNS failure, bad target URI, cancelled context.
type TransportError struct {
	Alerter string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failed: %v", e.Alerter, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IssueCreationError is returned when the issue tracker answers with a
// status code >= 300.
type IssueCreationError struct {
	StatusCode int
	Body       string
}

func (e *IssueCreationError) Error() string {
	return fmt.Sprintf("jira: issue creation failed (%d): %s", e.StatusCode, e.Body)
}

// ResponseError is returned when a non-Jira HTTP alerter gets a status
// code >= 300.
type ResponseError struct {
	Alerter    string
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Alerter, e.StatusCode, e.Body)
}
