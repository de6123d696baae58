package device

import (
	"context"

	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
)

// Transport delivers outbound messages to devices. Implementations encode
// and publish; they must honor ctx and must not call back into the Manager
// synchronously.
type Transport interface {
	SendConfigurationRequest(ctx context.Context, id Identity, msg *mrsv1.DeviceConfiguration) error
	SendSubscriptionRequest(ctx context.Context, id Identity, msg *mrsv1.DeviceSubscriptionConfiguration) error
	SendCommand(ctx context.Context, id Identity, msg *mrsv1.CommandMessage) error
}
