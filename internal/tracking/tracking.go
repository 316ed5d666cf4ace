// Package tracking projects an order or shipment identifier onto the storefront's
// six-milestone progress view.
//
// A projection is answered by the first provider in an ordered chain that has
// a definite result:
//
//	carrier record ──▶ has_tracking_data  (progress from the carrier, full log)
//	      │ no opinion
//	      ▼
//	order exists   ──▶ order_exists_only  (progress 0, empty log)
//	      │ no opinion
//	      ▼
//	no_data        ──▶ informational message, no progress
//
// A provider that errors or times out has no opinion. A dead carrier API
// therefore degrades the view; it never reports a shipment as missing when
// the existence check would have found the order.
package tracking

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"storefront-tracker/internal/adapter"
	"storefront-tracker/internal/model"
)

// DefaultTimeout bounds each provider call when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Provider is one link of the fallback chain.
// Lookup returns nil, nil when the provider has no opinion.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, identifier string) (*model.Projection, error)
}

// Config tunes a Projector.
type Config struct {
	Timeout time.Duration // Per provider call. Default: 10s

	// Returns, when set, attaches prior return requests to projections that
	// carry carrier data. Failures there are logged and the field omitted.
	Returns adapter.ReturnDesk

	Logger *slog.Logger
}

// Projector derives tracking projections from an ordered provider chain.
type Projector struct {
	providers []Provider
	returns   adapter.ReturnDesk
	timeout   time.Duration
	logger    *slog.Logger
}

// NewProjector creates a Projector that consults providers in order.
func NewProjector(providers []Provider, cfg Config) *Projector {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Projector{
		providers: providers,
		returns:   cfg.Returns,
		timeout:   cfg.Timeout,
		logger:    cfg.Logger,
	}
}

// NewDefaultProjector wires the standard chain: carrier record, then order existence.
func NewDefaultProjector(source adapter.ShipmentSource, cfg Config) *Projector {
	return NewProjector([]Provider{
		&CarrierProvider{Source: source},
		&ExistenceProvider{Source: source},
	}, cfg)
}

// Project returns the tracking view for identifier.
// Only a blank identifier produces an error.
func (p *Projector) Project(ctx context.Context, identifier string) (*model.Projection, error) {
	return p.project(ctx, identifier, false)
}

// Confirm is Project for decisions that must not rest on a fallback answer.
// A provider failure ends the chain with a transport error instead of
// falling through, so "could not check" is never read as "not eligible".
func (p *Projector) Confirm(ctx context.Context, identifier string) (*model.Projection, error) {
	return p.project(ctx, identifier, true)
}

func (p *Projector) project(ctx context.Context, identifier string, strict bool) (*model.Projection, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, model.NewMissingIdentifierError("tracking number")
	}

	for _, provider := range p.providers {
		proj, err := p.ask(ctx, provider, identifier)
		if err != nil {
			if strict {
				return nil, model.NewTransportError(provider.Name(), err)
			}
			continue
		}
		if proj == nil {
			continue
		}
		proj.Identifier = identifier
		if proj.State == model.StateHasTrackingData {
			p.attachReturns(ctx, proj)
		}
		return proj, nil
	}
	return NoData(identifier), nil
}

// ask runs one provider under the per-call timeout. Failures are logged and
// returned; the caller decides whether they mean "no opinion".
func (p *Projector) ask(ctx context.Context, provider Provider, identifier string) (*model.Projection, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	proj, err := provider.Lookup(ctx, identifier)
	if err != nil {
		p.logger.Warn("tracking provider failed",
			slog.String("provider", provider.Name()),
			slog.String("identifier", identifier),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return proj, nil
}

func (p *Projector) attachReturns(ctx context.Context, proj *model.Projection) {
	if p.returns == nil || proj.Track == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	status, err := p.returns.ReturnStatus(ctx, proj.Track.AirWayBillNo)
	if err != nil {
		p.logger.Warn("return status unavailable",
			slog.String("tracking_number", proj.Track.AirWayBillNo),
			slog.String("error", err.Error()),
		)
		return
	}
	proj.Returns = status
}

// NoData is the projection for an identifier nobody knows.
func NoData(identifier string) *model.Projection {
	return &model.Projection{
		Identifier: identifier,
		State:      model.StateNoData,
		Milestones: []string{},
		Message:    model.NoDataMessage,
	}
}

// FromTrack builds the carrier-backed projection for a shipment record.
func FromTrack(track *model.ShipmentTrack) *model.Projection {
	progress := model.ClampProgress(int(track.ShipmentProgress))
	if track.TrackingLogDetails == nil {
		track.TrackingLogDetails = []model.TrackingLog{}
	}
	delivered := model.IsDelivered(progress, track.TrackingLogDetails)

	return &model.Projection{
		State:          model.StateHasTrackingData,
		ProgressIndex:  &progress,
		Milestones:     model.Milestones,
		Track:          track,
		Delivered:      delivered,
		ReturnEligible: delivered,
	}
}

// OrderExistsOnly is the projection for an order the carrier has not picked up yet.
func OrderExistsOnly() *model.Projection {
	progress := 0
	return &model.Projection{
		State:         model.StateOrderExistsOnly,
		ProgressIndex: &progress,
		Milestones:    model.Milestones,
	}
}
