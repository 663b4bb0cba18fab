package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bnema/retain/internal/application/port"
	"github.com/bnema/retain/internal/application/port/mocks"
)

func pressured() port.MemoryStats {
	return port.MemoryStats{TotalRAM: 1000, AvailableRAM: 50}
}

func relaxed() port.MemoryStats {
	return port.MemoryStats{TotalRAM: 1000, AvailableRAM: 800}
}

func TestPolicy_Validate(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())

	bad := Policy{Interval: 0, MinAvailableRatio: 2, MaxLimitRatio: -1, ShrinkFraction: 0}
	err := bad.Validate()
	require.Error(t, err)
	for _, field := range []string{"interval", "min available", "max limit", "shrink fraction"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestPolicy_UnderPressure(t *testing.T) {
	p := DefaultPolicy()

	assert.True(t, p.UnderPressure(pressured()))
	assert.False(t, p.UnderPressure(relaxed()))
	assert.False(t, p.UnderPressure(port.MemoryStats{}), "unknown figures are not pressure")
	assert.True(t, p.UnderPressure(port.MemoryStats{HeapLive: 95, MemoryLimit: 100}))
	assert.False(t, p.UnderPressure(port.MemoryStats{HeapLive: 50, MemoryLimit: 100}))

	p.MinAvailableRatio = 0
	assert.False(t, p.UnderPressure(pressured()), "host check disabled")
}

func TestNewMonitor_RejectsInvalidInput(t *testing.T) {
	_, err := NewMonitor(nil, DefaultPolicy(), zerolog.Nop())
	assert.Error(t, err)

	ctrl := gomock.NewController(t)
	_, err = NewMonitor(mocks.NewMockMemoryProbe(ctrl), Policy{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestMonitor_CheckShrinksUnderPressure(t *testing.T) {
	ctrl := gomock.NewController(t)
	probe := mocks.NewMockMemoryProbe(ctrl)
	first := mocks.NewMockSoftReleaser(ctrl)
	second := mocks.NewMockSoftReleaser(ctrl)

	policy := DefaultPolicy()
	probe.EXPECT().Read(gomock.Any()).Return(pressured(), nil)
	first.EXPECT().Shrink(policy.ShrinkFraction).Return(3)
	second.EXPECT().Shrink(policy.ShrinkFraction).Return(2)

	m, err := NewMonitor(probe, policy, zerolog.Nop(), first)
	require.NoError(t, err)
	m.Add(second)

	report, err := m.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Pressure)
	assert.Equal(t, 5, report.Released)
	assert.Equal(t, uint64(5), m.Released())
	assert.Equal(t, report, m.Last())
}

func TestMonitor_AddRegistersOnceAndRemoves(t *testing.T) {
	ctrl := gomock.NewController(t)
	probe := mocks.NewMockMemoryProbe(ctrl)
	releaser := mocks.NewMockSoftReleaser(ctrl)

	policy := DefaultPolicy()
	probe.EXPECT().Read(gomock.Any()).Return(pressured(), nil).Times(2)
	releaser.EXPECT().Shrink(policy.ShrinkFraction).Return(4).Times(1)

	m, err := NewMonitor(probe, policy, zerolog.Nop())
	require.NoError(t, err)
	remove := m.Add(releaser)
	removeAgain := m.Add(releaser)

	report, err := m.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, report.Released, "a releaser added twice is shrunk once")

	remove()
	removeAgain()
	report, err = m.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Pressure)
	assert.Zero(t, report.Released)
}

func TestMonitor_CheckLeavesRegistriesAloneWithoutPressure(t *testing.T) {
	ctrl := gomock.NewController(t)
	probe := mocks.NewMockMemoryProbe(ctrl)
	releaser := mocks.NewMockSoftReleaser(ctrl)

	probe.EXPECT().Read(gomock.Any()).Return(relaxed(), nil)

	m, err := NewMonitor(probe, DefaultPolicy(), zerolog.Nop(), releaser)
	require.NoError(t, err)

	report, err := m.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Pressure)
	assert.Zero(t, report.Released)
}

func TestMonitor_CheckPropagatesProbeErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	probe := mocks.NewMockMemoryProbe(ctrl)
	probe.EXPECT().Read(gomock.Any()).Return(port.MemoryStats{}, errors.New("boom"))

	m, err := NewMonitor(probe, DefaultPolicy(), zerolog.Nop())
	require.NoError(t, err)

	_, err = m.Check(context.Background())
	assert.ErrorContains(t, err, "boom")
}

func TestMonitor_RunUntilCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	probe := mocks.NewMockMemoryProbe(ctrl)
	releaser := mocks.NewMockSoftReleaser(ctrl)

	probe.EXPECT().Read(gomock.Any()).Return(pressured(), nil).MinTimes(2)
	releaser.EXPECT().Shrink(gomock.Any()).Return(1).MinTimes(2)

	policy := DefaultPolicy()
	policy.Interval = 5 * time.Millisecond
	m, err := NewMonitor(probe, policy, zerolog.Nop(), releaser)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool { return m.Released() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop")
	}
}

func TestMonitor_SetPolicy(t *testing.T) {
	ctrl := gomock.NewController(t)
	m, err := NewMonitor(mocks.NewMockMemoryProbe(ctrl), DefaultPolicy(), zerolog.Nop())
	require.NoError(t, err)

	assert.Error(t, m.SetPolicy(Policy{}))

	next := DefaultPolicy()
	next.ShrinkFraction = 0.5
	require.NoError(t, m.SetPolicy(next))
	assert.Equal(t, next, m.Policy())
}
