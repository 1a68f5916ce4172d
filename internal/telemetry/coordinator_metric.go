package internaltelemetry

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// CoordinatorMetrics holds the metric instruments of the worker transaction
// coordinator.
type CoordinatorMetrics struct {
	ConnectionSetsBuilt    metric.Int64Counter
	CommandsDispatched     metric.Int64Counter
	CommandFailures        metric.Int64Counter
	ProtocolSteps          metric.Int64Counter
	DispatchLatency        metric.Float64Histogram
	OpenRemoteTransactions metric.Int64UpDownCounter
}

// NewCoordinatorMetrics creates and registers all the coordinator metrics.
func NewCoordinatorMetrics(meter metric.Meter) (*CoordinatorMetrics, error) {
	connectionSetsBuilt, err := meter.Int64Counter(
		"gojodb.coordinator.connection_sets_built_total",
		metric.WithDescription("Total number of worker connection sets built."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	commandsDispatched, err := meter.Int64Counter(
		"gojodb.coordinator.commands_dispatched_total",
		metric.WithDescription("Total number of commands sent to workers, labelled by mode."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	commandFailures, err := meter.Int64Counter(
		"gojodb.coordinator.command_failures_total",
		metric.WithDescription("Total number of commands that failed on a worker."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	protocolSteps, err := meter.Int64Counter(
		"gojodb.coordinator.protocol_steps_total",
		metric.WithDescription("Prepare, commit and abort steps, labelled by step and outcome."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	dispatchLatency, err := meter.Float64Histogram(
		"gojodb.coordinator.dispatch.duration",
		metric.WithDescription("Time to apply a command on every worker."),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	openRemoteTransactions, err := meter.Int64UpDownCounter(
		"gojodb.coordinator.open_remote_transactions",
		metric.WithDescription("Number of remote transactions currently open on workers."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	return &CoordinatorMetrics{
		ConnectionSetsBuilt:    connectionSetsBuilt,
		CommandsDispatched:     commandsDispatched,
		CommandFailures:        commandFailures,
		ProtocolSteps:          protocolSteps,
		DispatchLatency:        dispatchLatency,
		OpenRemoteTransactions: openRemoteTransactions,
	}, nil
}

// NewNoopCoordinatorMetrics returns instruments that record nothing.
func NewNoopCoordinatorMetrics() *CoordinatorMetrics {
	m, _ := NewCoordinatorMetrics(noop.NewMeterProvider().Meter(""))
	return m
}
