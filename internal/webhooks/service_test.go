package webhooks

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/braintree-broker/internal/payments"
	"github.com/angelmondragon/braintree-broker/internal/payments/paymentstest"
	pkgerrors "github.com/angelmondragon/braintree-broker/pkg/errors"
	"github.com/angelmondragon/braintree-broker/pkg/logger"
	"github.com/angelmondragon/braintree-broker/pkg/metrics"
)

type recordingDispatcher struct {
	mu    sync.Mutex
	calls []*payments.Notification
	err   error
}

func (d *recordingDispatcher) SubscriptionCharged(_ context.Context, n *payments.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, n)
	return d.err
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

func newService(t *testing.T, proc payments.Processor, d Dispatcher) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Processor: proc, Dispatcher: d})
	require.NoError(t, err)
	return svc
}

func TestNewServiceRequiresProcessor(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestHandleNotificationMissingFieldsSkipsParse(t *testing.T) {
	proc := &paymentstest.Processor{}
	svc := newService(t, proc, &recordingDispatcher{})

	for _, tc := range [][2]string{{"", "payload"}, {"sig", ""}, {"", ""}} {
		_, err := svc.HandleNotification(context.Background(), tc[0], tc[1])
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		assert.Equal(t, "Missing required fields", typed.Message())
	}
	assert.Empty(t, proc.WebhookCalls())
}

func TestHandleNotificationWhitespaceFieldsReachParser(t *testing.T) {
	proc := &paymentstest.Processor{WebhookErr: errors.New("signature does not match")}
	svc := newService(t, proc, &recordingDispatcher{})

	_, err := svc.HandleNotification(context.Background(), " ", "payload")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeProcessor))
	assert.Equal(t, []paymentstest.WebhookCall{{Signature: " ", Payload: "payload"}}, proc.WebhookCalls())
}

func TestHandleNotificationParseFailure(t *testing.T) {
	proc := &paymentstest.Processor{WebhookErr: errors.New("signature does not match")}
	d := &recordingDispatcher{}
	svc := newService(t, proc, d)

	_, err := svc.HandleNotification(context.Background(), "sig", "payload")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeProcessor))
	assert.Equal(t, []paymentstest.WebhookCall{{Signature: "sig", Payload: "payload"}}, proc.WebhookCalls())
	assert.Zero(t, d.count())
}

func TestHandleNotificationDispatchesChargedKindOnce(t *testing.T) {
	proc := &paymentstest.Processor{Notification: &payments.Notification{
		Kind:           payments.KindSubscriptionChargedSuccessfully,
		SubscriptionID: "sub-1",
		Timestamp:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}
	d := &recordingDispatcher{}
	svc := newService(t, proc, d)

	n, err := svc.HandleNotification(context.Background(), "sig", "payload")
	require.NoError(t, err)
	assert.Equal(t, payments.KindSubscriptionChargedSuccessfully, n.Kind)
	assert.Equal(t, 1, d.count())
}

func TestHandleNotificationOtherKindsAreAcknowledgedWithoutDispatch(t *testing.T) {
	for _, kind := range []payments.NotificationKind{
		payments.KindCheck,
		payments.KindSubscriptionCanceled,
		payments.KindSubscriptionChargedUnsuccessfully,
		"some_future_kind",
	} {
		proc := &paymentstest.Processor{Notification: &payments.Notification{Kind: kind}}
		d := &recordingDispatcher{}
		svc := newService(t, proc, d)

		_, err := svc.HandleNotification(context.Background(), "sig", "payload")
		require.NoError(t, err, "kind %s", kind)
		assert.Zero(t, d.count(), "kind %s", kind)
	}
}

func TestHandleNotificationRedeliveryIsProcessedAgain(t *testing.T) {
	proc := &paymentstest.Processor{Notification: &payments.Notification{Kind: payments.KindSubscriptionChargedSuccessfully}}
	d := &recordingDispatcher{}
	svc := newService(t, proc, d)

	for i := 0; i < 2; i++ {
		_, err := svc.HandleNotification(context.Background(), "same-sig", "same-payload")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, d.count())
	assert.Len(t, proc.WebhookCalls(), 2)
}

func TestHandleNotificationDispatchFailureIsInternal(t *testing.T) {
	proc := &paymentstest.Processor{Notification: &payments.Notification{Kind: payments.KindSubscriptionChargedSuccessfully}}
	svc := newService(t, proc, &recordingDispatcher{err: errors.New("sink down")})

	_, err := svc.HandleNotification(context.Background(), "sig", "payload")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInternal))
}

func TestDefaultDispatcherRecordsCharge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewPaymentMetrics(reg)
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	proc := &paymentstest.Processor{Notification: &payments.Notification{
		Kind:           payments.KindSubscriptionChargedSuccessfully,
		SubscriptionID: "sub-42",
	}}

	svc, err := NewService(ServiceParams{Processor: proc, Metrics: m, Logger: logg})
	require.NoError(t, err)

	_, err = svc.HandleNotification(context.Background(), "sig", "payload")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "webhooks.subscription_charged")
	assert.Contains(t, buf.String(), `"subscription_id":"sub-42"`)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var charged float64
	for _, mf := range mfs {
		if mf.GetName() == "subscription_charges_total" {
			charged = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(1), charged)
}
