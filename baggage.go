package telegen

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/baggage"
)

// SetBaggage adds a key-value pair to baggage in the context.
//
// Keys and values must conform to the W3C Baggage specification: keys are
// HTTP header tokens, values must be percent-encoded if they contain special
// characters. Returns an error on invalid input.
func SetBaggage(ctx context.Context, key, value string) (context.Context, error) {
	bag := baggage.FromContext(ctx)
	member, err := baggage.NewMember(key, value)
	if err != nil {
		return ctx, fmt.Errorf("create baggage member: %w", err)
	}
	bag, err = bag.SetMember(member)
	if err != nil {
		return ctx, fmt.Errorf("set baggage member: %w", err)
	}

	return baggage.ContextWithBaggage(ctx, bag), nil
}

// MustSetBaggage adds a key-value pair to baggage, panicking on error.
// Use when key and value are known to be valid, such as hardcoded keys.
func MustSetBaggage(ctx context.Context, key, value string) context.Context {
	newCtx, err := SetBaggage(ctx, key, value)
	if err != nil {
		panic(fmt.Sprintf("telegen: invalid baggage key=%q value=%q: %v", key, value, err))
	}

	return newCtx
}

// GetBaggage retrieves a value from baggage in the context.
func GetBaggage(ctx context.Context, key string) string {
	return baggage.FromContext(ctx).Member(key).Value()
}

// DeleteBaggage removes a key from baggage in the context.
func DeleteBaggage(ctx context.Context, key string) context.Context {
	bag := baggage.FromContext(ctx).DeleteMember(key)
	return baggage.ContextWithBaggage(ctx, bag)
}
