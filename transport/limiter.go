package transport

import (
	"net/http"

	"github.com/unigit/unigit/app"
	"golang.org/x/time/rate"
)

// limitedDoer wraps a Doer and allows Dos with a maximum rate limit.
type limitedDoer struct {
	doer    Doer
	limiter *rate.Limiter
}

// NewLimitedDoer creates a Doer limited to maxRate calls per second.
func NewLimitedDoer(doer Doer, maxRate float64) Doer {
	return &limitedDoer{
		doer:    doer,
		limiter: rate.NewLimiter(rate.Limit(maxRate), 1),
	}
}

// Do executes the request. If the limit is exceeded, blocks until the call
// rate is within limit or the request context is done.
func (d *limitedDoer) Do(r *http.Request) (*http.Response, error) {
	if err := d.limiter.Wait(r.Context()); err != nil {
		return nil, &app.RequestError{Op: "waiting for request limiter", Err: err}
	}

	return d.doer.Do(r)
}
