package paths

// Topic segments for the sensorlink device protocol.
// Every topic is {root}/{segment}/{endpoint}, where endpoint is the device's
// transport endpoint.

// Downstream: manager -> device
const (
	// ConfigurationRequest carries configuration requests and reconnection probes.
	// Pattern: {root}/configuration/request/{endpoint}
	ConfigurationRequest = "configuration/request"

	// SubscriptionRequest carries the report categories the device should push.
	// Pattern: {root}/subscription/request/{endpoint}
	SubscriptionRequest = "subscription/request"

	// Command carries command messages, keep-alives included.
	// Pattern: {root}/command/{endpoint}
	Command = "command"
)

// Upstream: device -> manager
const (
	// Configuration carries the device's full configuration.
	// Pattern: {root}/configuration/{endpoint}
	Configuration = "configuration"

	// Status carries status fragments.
	// Pattern: {root}/status/{endpoint}
	Status = "status"

	// Indication carries operational indications.
	// Pattern: {root}/indication/{endpoint}
	Indication = "indication"

	// SubscriptionAck acknowledges a subscription request.
	// Pattern: {root}/subscription/ack/{endpoint}
	SubscriptionAck = "subscription/ack"

	// CommandEcho carries command messages echoed back by the device.
	// Pattern: {root}/command/echo/{endpoint}
	CommandEcho = "command/echo"
)

// GroupManager is the shared-subscription group joined by manager replicas.
const GroupManager = "sensorlink-manager"
