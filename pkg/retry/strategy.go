package retry

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/ybbus/jsonrpc"

	"github.com/code-payments/metaplex-go/pkg/retry/backoff"
)

// Strategy is a function that determines whether or not an action should be
// retried. Strategies are allowed to delay or cause other side effects.
type Strategy func(attempts uint, err error) bool

// RetriableRPCErrors returns a strategy that retries JSON-RPC error responses
// accepted by retriable. Transport failures and any other errors are not
// retried.
func RetriableRPCErrors(retriable func(*jsonrpc.RPCError) bool) Strategy {
	return func(attempts uint, err error) bool {
		var rpcErr *jsonrpc.RPCError
		if !errors.As(err, &rpcErr) {
			return false
		}

		return retriable(rpcErr)
	}
}

// BackoffWithJitter returns a strategy that sleeps before the next attempt,
// with a jitter on the delay. The maxBackoff is applied before the jitter.
//
// The jitter parameter is a fraction of the capped delay that the timing can
// be off by. For example, a capped delay of 100ms with a jitter of 0.1 results
// in a delay of 100ms +/- 10ms.
func BackoffWithJitter(strategy backoff.Strategy, maxBackoff time.Duration, jitter float64) Strategy {
	return func(attempts uint, err error) bool {
		delay := capDelay(strategy(attempts), maxBackoff)
		sleeperImpl.Sleep(time.Duration(float64(delay) * (1 + (rand.Float64()*jitter*2 - jitter))))
		return true
	}
}

func capDelay(delay, maxBackoff time.Duration) time.Duration {
	return time.Duration(math.Min(float64(maxBackoff), float64(delay)))
}

type sleeper interface {
	Sleep(time.Duration)
}

// realSleeper uses the time package to perform actual sleeps
type realSleeper struct{}

func (r *realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

var sleeperImpl sleeper = &realSleeper{}
