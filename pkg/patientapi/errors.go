package patientapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskwatch/platform/pkg/common/models"
)

// ErrMissingAPIKey is wrapped by the ConfigurationError returned from New when
// no API key is configured.
var ErrMissingAPIKey = errors.New("patient API key is not set")

// ConfigurationError reports a client that cannot be built. It is fatal and
// never retried.
type ConfigurationError struct {
	Setting string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("patientapi: configuration error (%s): %v", e.Setting, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// TransferError is the terminal failure of a request against the remote API:
// either a non-retriable status or a spent retry budget.
type TransferError struct {
	Op         string
	Page       int
	StatusCode int
	Body       string
	Attempts   int
	// Transient is true when the last failure was a retriable kind, i.e. the
	// retry budget ran out.
	Transient bool
	Err       error
}

const maxErrorBody = 256

func (e *TransferError) Error() string {
	var b strings.Builder
	b.WriteString("patientapi: ")
	b.WriteString(e.Op)
	if e.Page > 0 {
		fmt.Fprintf(&b, " page %d", e.Page)
	}
	fmt.Fprintf(&b, " failed after %d attempt(s)", e.Attempts)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody] + "..."
		}
		fmt.Fprintf(&b, ": %s", body)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsTransferError reports whether err is or wraps a TransferError.
func IsTransferError(err error) bool {
	var te *TransferError
	return errors.As(err, &te)
}

// Unconfigured stands in for a Client that could not be built. Every call
// returns Err, so a server can start and report the problem per request.
type Unconfigured struct {
	Err error
}

func (u Unconfigured) FetchAllPatients(ctx context.Context, limit, maxPages int) (*models.FetchResult, error) {
	return nil, u.Err
}

func (u Unconfigured) SubmitAssessment(ctx context.Context, req models.SubmitRequest) (*SubmitResponse, error) {
	return nil, u.Err
}
