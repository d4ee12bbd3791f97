package wxo

import "fmt"

// ConfigError means a required environment variable or credential file is
// missing or malformed.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return e.Reason }

// AuthError means the cached token is expired and could not be refreshed.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string { return e.Reason }

// NotFoundError means an agent name did not resolve to any platform agent.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("agent %q not found", e.Name) }

// TransportError covers network failures and non-2xx HTTP responses. For HTTP
// failures StatusCode and Body carry the platform's reply.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("http %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }
