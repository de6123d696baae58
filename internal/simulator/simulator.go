package simulator

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"k8s.io/utils/clock"

	"github.com/autopeer-io/sensorlink/internal/pkg/mqtt/adapter"
	"github.com/autopeer-io/sensorlink/internal/pkg/mqtt/paths"
	mrsv1 "github.com/autopeer-io/sensorlink/pkg/apis/mrs/v1"
	"github.com/autopeer-io/sensorlink/pkg/log"
)

// Simulator plays an MRS device: it answers configuration and subscription
// requests, echoes and executes commands, and pushes status reports for
// the categories the manager subscribed to.
type Simulator struct {
	hub      *Hub
	plant    *Plant
	clock    clock.WithTicker
	interval time.Duration

	mu            sync.Mutex
	subscriptions []mrsv1.ReportCategory
}

// New returns a simulator publishing status every interval.
func New(hub *Hub, plant *Plant, interval time.Duration, clk clock.WithTicker) *Simulator {
	if clk == nil {
		clk = clock.RealClock{}
	}
	s := &Simulator{
		hub:      hub,
		plant:    plant,
		clock:    clk,
		interval: interval,
	}
	hub.Register(paths.ConfigurationRequest, adapter.Handler(s.onConfigurationRequest))
	hub.Register(paths.SubscriptionRequest, adapter.Handler(s.onSubscriptionRequest))
	hub.Register(paths.Command, adapter.Handler(s.onCommand))
	return s
}

// Run connects and pushes periodic status until ctx is done.
func (s *Simulator) Run(ctx context.Context) error {
	log.Info("Starting sensorlink simulator", "endpoint", s.hub.endpoint, "device", s.plant.Name(), "interval", s.interval.String())

	if err := s.hub.Start(ctx); err != nil {
		return err
	}
	defer s.hub.Stop()

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			s.runOnce(ctx)
		case <-ctx.Done():
			log.Info("Shutting down sensorlink simulator.")
			return nil
		}
	}
}

// runOnce advances the plant and pushes a full status report when the
// manager subscribed to technical status.
func (s *Simulator) runOnce(ctx context.Context) {
	s.plant.Step(s.interval)
	if !s.subscribed(mrsv1.ReportCategoryTechnicalStatus) {
		return
	}
	s.publishStatus(ctx)
}

func (s *Simulator) subscribed(c mrsv1.ReportCategory) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.subscriptions, c)
}

func (s *Simulator) header(req *mrsv1.MessageHeader) mrsv1.MessageHeader {
	h := mrsv1.MessageHeader{
		MessageID:            uuid.NewString(),
		MessageType:          mrsv1.MessageTypeResponse,
		DeviceIdentification: &mrsv1.DeviceIdentification{DeviceName: s.plant.Name(), DeviceType: "Simulator"},
	}
	if req != nil {
		h.MessageID = req.MessageID
		h.RequestorIdentification = req.RequestorIdentification
	}
	return h
}

func (s *Simulator) onConfigurationRequest(ctx context.Context, _ string, req *mrsv1.DeviceConfiguration) error {
	cfg := s.plant.Configuration()
	cfg.MessageHeader = s.header(&req.MessageHeader)
	log.Debug("Answering configuration request", "requestor", req.RequestorIdentification)
	return s.hub.Send(ctx, paths.Configuration, cfg)
}

func (s *Simulator) onSubscriptionRequest(ctx context.Context, _ string, req *mrsv1.DeviceSubscriptionConfiguration) error {
	s.mu.Lock()
	s.subscriptions = slices.Clone(req.SubscriptionTypes)
	s.mu.Unlock()
	log.Info("Subscriptions updated", "categories", req.SubscriptionTypes)

	success := mrsv1.ExecutionStatusSuccess
	ack := &mrsv1.DeviceSubscriptionConfiguration{
		MessageHeader:     s.header(&req.MessageHeader),
		SubscriptionTypes: slices.Clone(req.SubscriptionTypes),
		ExecutionStatus:   &success,
	}
	if err := s.hub.Send(ctx, paths.SubscriptionAck, ack); err != nil {
		return err
	}
	if s.subscribed(mrsv1.ReportCategoryTechnicalStatus) {
		s.publishStatus(ctx)
	}
	return nil
}

// onCommand echoes the command, then reports its effect: a status fragment
// for the sensors it changed, or an indication when it failed.
func (s *Simulator) onCommand(ctx context.Context, _ string, msg *mrsv1.CommandMessage) error {
	echo := *msg
	echo.MessageHeader = s.header(&msg.MessageHeader)
	if err := s.hub.Send(ctx, paths.CommandEcho, &echo); err != nil {
		return err
	}
	if msg.Command.Simple != nil && *msg.Command.Simple == mrsv1.SimpleCommandKeepAlive {
		return nil
	}

	changed, err := s.plant.Apply(msg)
	if err != nil {
		log.Warn("Command rejected", "verb", msg.Command.Verb(), "err", err.Error())
		if !s.subscribed(mrsv1.ReportCategoryOperationalIndication) {
			return nil
		}
		return s.hub.Send(ctx, paths.Indication, &mrsv1.DeviceIndicationReport{
			MessageHeader: s.header(nil),
			Indications: []mrsv1.Indication{{
				Code:                 "CommandRejected",
				SensorIdentification: msg.SensorIdentification,
				Severity:             mrsv1.SeverityWarning,
				Message:              err.Error(),
			}},
		})
	}

	if len(changed) == 0 || !s.subscribed(mrsv1.ReportCategoryTechnicalStatus) {
		return nil
	}
	report := s.plant.Status(changed...)
	report.MessageHeader = s.header(nil)
	return s.hub.Send(ctx, paths.Status, report)
}

func (s *Simulator) publishStatus(ctx context.Context) {
	report := s.plant.Status()
	report.MessageHeader = s.header(nil)
	if err := s.hub.Send(ctx, paths.Status, report); err != nil {
		log.Error(err, "Failed to publish status report")
	}
}
