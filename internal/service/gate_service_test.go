package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/deaffx/mottu-yard-devops/internal/domain"

	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturePublisher struct {
	inputs []*iotdataplane.PublishInput
}

func (p *capturePublisher) Publish(_ context.Context, params *iotdataplane.PublishInput, _ ...func(*iotdataplane.Options)) (*iotdataplane.PublishOutput, error) {
	p.inputs = append(p.inputs, params)
	return &iotdataplane.PublishOutput{}, nil
}

type captureGateNotifier struct {
	gates []domain.GateNotification
}

func (n *captureGateNotifier) BroadcastGate(notification domain.GateNotification) {
	n.gates = append(n.gates, notification)
}

type gateFixture struct {
	*yardFixture
	gate         *GateService
	publisher    *capturePublisher
	gateNotifier *captureGateNotifier
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	yf := newYardFixture(t)
	publisher := &capturePublisher{}
	notifier := &captureGateNotifier{}
	gate := NewGateService(yf.yard, publisher, notifier, zap.NewNop().Sugar())
	return &gateFixture{yardFixture: yf, gate: gate, publisher: publisher, gateNotifier: notifier}
}

func entryBody(plate string, lotID int, gateID string) string {
	return fmt.Sprintf(`{"event_id":"ev-1","event_type":"vehicle_entry","plate":"%s","lot_id":%d,"gate_id":"%s"}`, plate, lotID, gateID)
}

func TestHandleGateEventEntryAllowed(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()
	lotA := f.addLot(t, "Yard A", 5)
	lotB := f.addLot(t, "Yard B", 5)

	created, err := f.yard.CreateVehicle(ctx, vehicleDTO("ABC1D23", lotA.ID))
	require.NoError(t, err)

	err = f.gate.HandleGateEvent(ctx, entryBody("ABC1D23", lotB.ID, "north-1"))
	require.NoError(t, err)

	// the vehicle moved and the barrier was commanded open
	moved, err := f.yard.GetVehicle(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, lotB.ID, moved.CurrentLot.ID)

	require.Len(t, f.publisher.inputs, 1)
	assert.Equal(t, "yard/gates/north-1/commands", *f.publisher.inputs[0].Topic)
	assert.Contains(t, string(f.publisher.inputs[0].Payload), `"command":"open"`)

	require.Len(t, f.gateNotifier.gates, 1)
	assert.True(t, f.gateNotifier.gates[0].Allowed)
	assert.Equal(t, "ev-1", f.gateNotifier.gates[0].EventID)
}

func TestHandleGateEventUnknownPlate(t *testing.T) {
	f := newGateFixture(t)
	lot := f.addLot(t, "Yard A", 5)

	err := f.gate.HandleGateEvent(context.Background(), entryBody("ZZZ9999", lot.ID, "north-1"))
	require.NoError(t, err)

	assert.Empty(t, f.publisher.inputs)
	require.Len(t, f.gateNotifier.gates, 1)
	assert.False(t, f.gateNotifier.gates[0].Allowed)
	assert.NotEmpty(t, f.gateNotifier.gates[0].Reason)
}

func TestHandleGateEventFullLot(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()
	lotA := f.addLot(t, "Yard A", 5)
	lotB := f.addLot(t, "Yard B", 1)

	_, err := f.yard.CreateVehicle(ctx, vehicleDTO("BBB2222", lotB.ID))
	require.NoError(t, err)
	created, err := f.yard.CreateVehicle(ctx, vehicleDTO("ABC1D23", lotA.ID))
	require.NoError(t, err)

	err = f.gate.HandleGateEvent(ctx, entryBody("ABC1D23", lotB.ID, "north-1"))
	require.NoError(t, err)

	// denied: no barrier command, vehicle stayed put
	assert.Empty(t, f.publisher.inputs)
	require.Len(t, f.gateNotifier.gates, 1)
	assert.False(t, f.gateNotifier.gates[0].Allowed)
	assert.Contains(t, f.gateNotifier.gates[0].Reason, "capacity")

	still, err := f.yard.GetVehicle(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, lotA.ID, still.CurrentLot.ID)
}

func TestHandleGateEventMalformed(t *testing.T) {
	f := newGateFixture(t)

	require.NoError(t, f.gate.HandleGateEvent(context.Background(), "{not json"))
	assert.Empty(t, f.publisher.inputs)
	assert.Empty(t, f.gateNotifier.gates)
}

func TestHandleGateEventUnknownType(t *testing.T) {
	f := newGateFixture(t)

	body := `{"event_id":"ev-2","event_type":"door_open","plate":"ABC1D23","lot_id":1}`
	require.NoError(t, f.gate.HandleGateEvent(context.Background(), body))
	assert.Empty(t, f.gateNotifier.gates)
}

func TestHandleGateEventExit(t *testing.T) {
	f := newGateFixture(t)

	body := `{"event_id":"ev-3","event_type":"vehicle_exit","plate":"ABC1D23","lot_id":1,"gate_id":"south-1"}`
	require.NoError(t, f.gate.HandleGateEvent(context.Background(), body))

	// exits are acknowledged but never open a barrier
	assert.Empty(t, f.publisher.inputs)
	require.Len(t, f.gateNotifier.gates, 1)
	assert.True(t, f.gateNotifier.gates[0].Allowed)
}

func TestHandleGateEventEntryMissingFields(t *testing.T) {
	f := newGateFixture(t)

	body := `{"event_type":"vehicle_entry","plate":"","lot_id":0}`
	require.NoError(t, f.gate.HandleGateEvent(context.Background(), body))
	assert.Empty(t, f.gateNotifier.gates)
}
