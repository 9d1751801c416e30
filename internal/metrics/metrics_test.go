package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveDispatch(t *testing.T) {
	okBefore := testutil.ToFloat64(NotificationsDispatched.WithLabelValues("post_reply", "ok"))
	failedBefore := testutil.ToFloat64(NotificationsDispatched.WithLabelValues("post_reply", "failed"))

	ObserveDispatch("post_reply", true)
	ObserveDispatch("post_reply", false)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(NotificationsDispatched.WithLabelValues("post_reply", "ok")))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(NotificationsDispatched.WithLabelValues("post_reply", "failed")))
}

func TestObserveRelayMessage(t *testing.T) {
	before := testutil.ToFloat64(RelayMessages.WithLabelValues(RelayDropped))
	ObserveRelayMessage(RelayDropped)
	assert.Equal(t, before+1, testutil.ToFloat64(RelayMessages.WithLabelValues(RelayDropped)))
}

func TestGatewayGauges(t *testing.T) {
	before := testutil.ToFloat64(GatewayConnections)
	GatewayConnections.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(GatewayConnections))
	GatewayConnections.Dec()
	assert.Equal(t, before, testutil.ToFloat64(GatewayConnections))
}
