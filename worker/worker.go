package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/webhookx-io/hookshot/config/modules"
	"github.com/webhookx-io/hookshot/model"
	"github.com/webhookx-io/hookshot/notification"
	"github.com/webhookx-io/hookshot/pkg/metrics"
	"github.com/webhookx-io/hookshot/worker/deliverer"
	"github.com/webhookx-io/hookshot/worker/retry"
	"go.uber.org/zap"
)

// Worker posts captured content to webhook targets.
type Worker struct {
	log       *zap.SugaredLogger
	deliverer deliverer.Deliverer
	retry     retry.Retry
	timeout   time.Duration
	notifier  notification.Notifier
	messages  *notification.Factory
	metrics   *metrics.Metrics

	sleep func(time.Duration)
	now   func() time.Time
}

type Option func(*Worker)

// WithSleep replaces the backoff wait.
func WithSleep(fn func(time.Duration)) Option {
	return func(w *Worker) { w.sleep = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(w *Worker) { w.now = fn }
}

func WithDeliverer(d deliverer.Deliverer) Option {
	return func(w *Worker) { w.deliverer = d }
}

func NewWorker(cfg *modules.DeliveryConfig,
	notifier notification.Notifier,
	messages *notification.Factory,
	metrics *metrics.Metrics,
	log *zap.SugaredLogger,
	opts ...Option) *Worker {

	w := &Worker{
		log:       log,
		deliverer: deliverer.NewHTTPDeliverer(cfg),
		retry: retry.NewRetry(retry.BackoffStrategy,
			retry.WithBackoff(time.Duration(cfg.BackoffBase)*time.Millisecond, int(cfg.MaxAttempts))),
		timeout:  time.Duration(cfg.Timeout) * time.Millisecond,
		notifier: notifier,
		messages: messages,
		metrics:  metrics,
		sleep:    time.Sleep,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Deliver posts content to target, retrying transient failures, and emits
// exactly one notification for the terminal outcome. The wait between
// attempts is not cut short by ctx.
func (w *Worker) Deliver(ctx context.Context, target model.WebhookTarget, content *model.CapturedContent, page model.PageInfo) *Result {
	payload, err := json.Marshal(model.NewPayload(target, content, page, w.now()))
	if err != nil {
		return w.finish(ctx, target, &Result{Outcome: OutcomeFailure, Error: err.Error()})
	}

	request := &deliverer.Request{
		URL:     target.URL,
		Method:  http.MethodPost,
		Payload: payload,
		Timeout: w.timeout,
	}

	result := &Result{}
	for {
		result.Attempts++
		response := w.deliverer.Deliver(ctx, request)
		w.observe(target, response)

		outcome, terminal := classify(response)
		result.StatusCode = response.StatusCode
		result.Error = ""
		if response.Error != nil {
			if outcome == OutcomeSuccess {
				w.log.Debugf("ignoring response body error from %s: %v", target.Name, response.Error)
			} else {
				result.Error = response.Error.Error()
			}
		}

		if terminal {
			result.Outcome = outcome
			break
		}

		w.log.Warnf("attempt %d to %s failed: %s", result.Attempts, target.Name, response)

		delay := w.retry.NextDelay(result.Attempts)
		if delay == retry.Stop || ctx.Err() != nil {
			result.Outcome = OutcomeFailure
			break
		}
		w.log.Debugf("retrying %s in %s", target.Name, delay)
		w.sleep(delay)
	}

	return w.finish(ctx, target, result)
}

// classify returns the outcome of a single attempt and whether it ends the
// delivery. A received status line decides the outcome even when reading the
// body failed afterwards.
func classify(res *deliverer.Response) (Outcome, bool) {
	switch {
	case res.StatusCode != 0 && res.Is2xx():
		return OutcomeSuccess, true
	case res.StatusCode != 0 && configErrorStatus[res.StatusCode]:
		return OutcomeConfigError, true
	case res.StatusCode != 0:
		return OutcomeFailure, false
	case res.Timeout():
		return OutcomeTimeout, true
	case res.Error != nil:
		return OutcomeFailure, false
	case res.Is2xx():
		return OutcomeSuccess, true
	case configErrorStatus[res.StatusCode]:
		return OutcomeConfigError, true
	default:
		return OutcomeFailure, false
	}
}

func (w *Worker) observe(target model.WebhookTarget, res *deliverer.Response) {
	w.metrics.AttemptTotalCounter.With("webhook", target.Name).Add(1)
	if !res.Is2xx() {
		w.metrics.AttemptFailedCounter.With("webhook", target.Name, "status", strconv.Itoa(res.StatusCode)).Add(1)
	}
	w.metrics.AttemptResponseDurationHistogram.With("webhook", target.Name).Observe(res.Latency.Seconds())
}

func (w *Worker) finish(ctx context.Context, target model.WebhookTarget, result *Result) *Result {
	var n *notification.Notification
	switch result.Outcome {
	case OutcomeSuccess:
		w.log.Infof("delivered to %s after %d attempt(s)", target.Name, result.Attempts)
		n = w.messages.Success(target.Name)
	case OutcomeConfigError:
		w.log.Warnf("webhook %s responded %d", target.Name, result.StatusCode)
		n = w.messages.ConfigError(target.Name, result.StatusCode)
	case OutcomeTimeout:
		w.log.Warnf("request to %s timed out after %s", target.Name, w.timeout)
		n = w.messages.Timeout(target.Name)
	default:
		w.log.Errorf("failed to deliver to %s after %d attempt(s): %s", target.Name, result.Attempts, result.Error)
		n = w.messages.Failure(target.Name, result.Attempts)
	}
	w.metrics.DeliveryOutcomeCounter.With("outcome", string(result.Outcome)).Add(1)
	w.notifier.Notify(ctx, n)
	return result
}
