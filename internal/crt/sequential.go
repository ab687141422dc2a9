package crt

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/agbru/crtcalc/internal/field"
	"github.com/agbru/crtcalc/internal/primes"
)

// Iteration evaluates the target computation modulo f.Modulus() and returns a
// residue vector of the builder's dimension. Implementations must be safe for
// concurrent use when each call receives its own field.Modular.
type Iteration func(ctx context.Context, f field.Modular) ([]uint64, error)

var tracer = otel.Tracer("github.com/agbru/crtcalc/internal/crt")

// Evaluate runs iter at prime and validates the shape of its output.
func Evaluate(ctx context.Context, iter Iteration, prime uint64, dimension int) ([]uint64, error) {
	f, err := field.New(prime)
	if err != nil {
		return nil, err
	}
	residue, err := iter(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("iteration at prime %d: %w", prime, err)
	}
	if len(residue) != dimension {
		return nil, fmt.Errorf("%w: iteration returned %d entries, want %d", ErrDimension, len(residue), dimension)
	}
	return residue, nil
}

// Sequential drives b to termination on the calling goroutine: draw a prime
// coprime to the modulus, evaluate, fold in, repeat. An uninitialized builder
// is seeded with the first residue.
func Sequential(ctx context.Context, b *Builder, supply *primes.Supply, iter Iteration) (err error) {
	ctx, span := tracer.Start(ctx, "crt.Sequential")
	defer func() {
		span.SetAttributes(attribute.Int("crt.steps", b.Steps()))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(
		attribute.Int("crt.dimension", b.Dimension()),
		attribute.Int("crt.bound_bits", b.BoundBits()),
		attribute.Int("crt.prime_bits", supply.Bits()),
	)

	for b.Modulus() == nil || !b.Terminated() {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := supply.NextAcceptable(b.Modulus())
		if err != nil {
			return err
		}
		residue, err := Evaluate(ctx, iter, p, b.Dimension())
		if err != nil {
			return err
		}
		if b.Modulus() == nil {
			err = b.Initialize(p, residue)
		} else {
			err = b.Progress(p, residue)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
