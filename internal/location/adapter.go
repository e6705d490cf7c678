// Package location is the seam to the device geolocation collaborator.
// The engine only ever consumes a tagged outcome; a slow or failing
// capture degrades to a recorded status, never to a hung request.
package location

import (
	"context"
	"time"

	"staffops-backend/internal/model"
)

// Adapter captures one location sample. Implementations live outside the
// engine (device bridges, mobile clients); Unavailable is the fallback
// when no capture source exists server-side.
type Adapter interface {
	Capture(ctx context.Context) model.LocationSample
}

// Unavailable is the no-source adapter: every capture reports the
// unavailable outcome.
type Unavailable struct{}

func (Unavailable) Capture(ctx context.Context) model.LocationSample {
	return model.LocationSample{Status: model.LocationUnavailable}
}

// bounded wraps an adapter with a capture deadline.
type bounded struct {
	inner   Adapter
	timeout time.Duration
}

// WithTimeout bounds how long a capture may run. A capture that outlives
// the deadline is reported as the timeout outcome and its late result is
// discarded.
func WithTimeout(a Adapter, timeout time.Duration) Adapter {
	return &bounded{inner: a, timeout: timeout}
}

func (b *bounded) Capture(ctx context.Context) model.LocationSample {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	done := make(chan model.LocationSample, 1)
	go func() {
		done <- b.inner.Capture(ctx)
	}()

	select {
	case sample := <-done:
		return Normalize(sample)
	case <-ctx.Done():
		return model.LocationSample{Status: model.LocationTimeout}
	}
}

// NormalizeStatus maps any out-of-enum status to unknown.
func NormalizeStatus(status string) string {
	switch status {
	case model.LocationCaptured, model.LocationDenied, model.LocationTimeout, model.LocationUnavailable:
		return status
	default:
		return model.LocationUnknown
	}
}

// Normalize sanitizes a sample before it is stored: out-of-enum statuses
// become unknown, and coordinates outside the valid lat/lng domain are
// dropped while keeping the reported status.
func Normalize(sample model.LocationSample) model.LocationSample {
	sample.Status = NormalizeStatus(sample.Status)
	if sample.Latitude != nil && (*sample.Latitude < -90 || *sample.Latitude > 90) {
		sample.Latitude = nil
	}
	if sample.Longitude != nil && (*sample.Longitude < -180 || *sample.Longitude > 180) {
		sample.Longitude = nil
	}
	return sample
}
