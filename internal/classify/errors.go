package classify

import (
	"errors"
	"fmt"

	"memo/internal/provider"
)

// ErrMalformed 模型回复不是预期的 JSON 结构
// ErrMalformed means the reply did not contain the expected JSON object.
var ErrMalformed = errors.New("malformed classifier reply")

// Kind is one of the three failure classes of a classification turn.
type Kind int

const (
	// KindTransport covers network, DNS, TLS, timeout and cancellation.
	KindTransport Kind = iota + 1
	// KindRemote is a non-2xx status or an error envelope from the model API.
	KindRemote
	// KindMalformed is a reply that does not parse.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRemote:
		return "remote"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error 分类失败，携带失败类别
// Error is a failed classification. Raw holds the model text for
// KindMalformed.
type Error struct {
	Kind Kind
	Raw  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("classify %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// wrapProviderError sorts a provider failure into remote or transport.
func wrapProviderError(err error) *Error {
	var apiErr *provider.APIError
	if errors.As(err, &apiErr) {
		return &Error{Kind: KindRemote, Err: err}
	}
	return &Error{Kind: KindTransport, Err: err}
}
