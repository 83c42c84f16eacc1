package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/deaffx/mottu-yard-devops/internal/domain"
	"github.com/deaffx/mottu-yard-devops/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BarrierPublisher is the slice of the IoT data plane API used to open gate
// barriers.
type BarrierPublisher interface {
	Publish(ctx context.Context, params *iotdataplane.PublishInput, optFns ...func(*iotdataplane.Options)) (*iotdataplane.PublishOutput, error)
}

// GateNotifier receives gate decisions for broadcasting.
type GateNotifier interface {
	BroadcastGate(n domain.GateNotification)
}

// GateService processes gate events arriving over SQS. An entry event moves
// the vehicle into the gate's lot through the assignment rules; only an
// allowed entry opens the barrier.
type GateService struct {
	yard      *YardService
	publisher BarrierPublisher
	notifier  GateNotifier
	log       *zap.SugaredLogger
}

func NewGateService(yard *YardService, publisher BarrierPublisher, notifier GateNotifier, log *zap.SugaredLogger) *GateService {
	return &GateService{yard: yard, publisher: publisher, notifier: notifier, log: log}
}

type barrierCommand struct {
	Command string `json:"command"`
	EventID string `json:"event_id"`
}

// HandleGateEvent consumes one raw SQS message body. A nil return means the
// message is done (processed or unrecoverable); an error requests
// redelivery.
func (s *GateService) HandleGateEvent(ctx context.Context, body string) error {
	var ev domain.GateEvent
	if err := json.Unmarshal([]byte(body), &ev); err != nil {
		s.log.Warnw("dropping malformed gate event", "error", err)
		return nil
	}
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	switch ev.EventType {
	case domain.GateEventVehicleEntry:
		return s.handleEntry(ctx, ev)
	case domain.GateEventVehicleExit:
		s.notify(ev, true, "")
		return nil
	default:
		s.log.Warnw("dropping gate event with unknown type", "event_type", ev.EventType, "event_id", ev.EventID)
		return nil
	}
}

func (s *GateService) handleEntry(ctx context.Context, ev domain.GateEvent) error {
	if ev.Plate == "" || ev.LotID <= 0 {
		s.log.Warnw("dropping entry event without plate or lot", "event_id", ev.EventID)
		return nil
	}

	vehicle, err := s.yard.GetVehicleByPlate(ctx, ev.Plate)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.notify(ev, false, "plate not registered in the fleet")
			return nil
		}
		return fmt.Errorf("looking up plate '%s': %w", ev.Plate, err)
	}

	if _, err := s.yard.MoveVehicle(ctx, vehicle.ID, ev.LotID); err != nil {
		var full *LotFullError
		switch {
		case errors.As(err, &full):
			s.notify(ev, false, full.Error())
			return nil
		case errors.Is(err, repository.ErrNotFound):
			s.notify(ev, false, err.Error())
			return nil
		}
		return fmt.Errorf("moving vehicle %d to lot %d: %w", vehicle.ID, ev.LotID, err)
	}

	s.openBarrier(ctx, ev)
	s.notify(ev, true, "")
	return nil
}

// openBarrier publishes the open command for the gate. A publish failure is
// logged but does not fail the event; the assignment already happened.
func (s *GateService) openBarrier(ctx context.Context, ev domain.GateEvent) {
	if s.publisher == nil || ev.GateID == "" {
		return
	}
	payload, err := json.Marshal(barrierCommand{Command: "open", EventID: ev.EventID})
	if err != nil {
		s.log.Errorw("marshaling barrier command", "error", err)
		return
	}
	topic := fmt.Sprintf("yard/gates/%s/commands", ev.GateID)
	_, err = s.publisher.Publish(ctx, &iotdataplane.PublishInput{
		Topic:   aws.String(topic),
		Payload: payload,
	})
	if err != nil {
		s.log.Errorw("publishing barrier command", "topic", topic, "error", err)
		return
	}
	s.log.Infow("barrier open command published", "gate_id", ev.GateID, "event_id", ev.EventID)
}

func (s *GateService) notify(ev domain.GateEvent, allowed bool, reason string) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastGate(domain.GateNotification{
		EventID:   ev.EventID,
		EventType: ev.EventType,
		Plate:     ev.Plate,
		LotID:     ev.LotID,
		GateID:    ev.GateID,
		Allowed:   allowed,
		Reason:    reason,
		Timestamp: ev.Timestamp,
	})
}
