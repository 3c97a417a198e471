package wizard

import (
	"agencysite/models"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const BriefPath = "/api/project-brief"

// Result is what the server returns for an accepted brief.
type Result struct {
	ID      string
	Message string
}

// Transport delivers one brief to the intake endpoint.
type Transport interface {
	Submit(ctx context.Context, brief models.ProjectBriefSubmission) (Result, error)
}

// ServerError carries the error text from a non-2xx response.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// HTTPTransport posts briefs as JSON with resty. It never retries.
type HTTPTransport struct {
	client *resty.Client
}

func NewHTTPTransport(serverURL string, timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(serverURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &HTTPTransport{client: client}
}

func (t *HTTPTransport) Submit(ctx context.Context, brief models.ProjectBriefSubmission) (Result, error) {
	var ok, failed models.BriefResponse

	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(brief).
		SetResult(&ok).
		SetError(&failed).
		Post(BriefPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to reach server: %w", err)
	}

	if resp.IsError() || !ok.Success {
		msg := failed.Error
		if msg == "" {
			msg = ok.Error
		}
		if msg == "" {
			msg = fmt.Sprintf("server returned %s", statusText(resp.StatusCode()))
		}
		return Result{}, &ServerError{StatusCode: resp.StatusCode(), Message: msg}
	}

	result := Result{Message: ok.Message}
	if ok.Data != nil {
		result.ID = ok.Data.ID
	}
	return result, nil
}

// Close drops idle keep-alive connections.
func (t *HTTPTransport) Close() {
	t.client.GetClient().CloseIdleConnections()
}

// IsServerError reports whether err came back from the endpoint rather than
// the network.
func IsServerError(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return fmt.Sprintf("%d %s", code, text)
	}
	return fmt.Sprintf("%d", code)
}
