package tracing

import (
	"context"
	"sort"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// InjectTraceContext writes the propagation fields of ctx into Kafka headers.
// Existing headers with the same key are replaced.
func InjectTraceContext(ctx context.Context, headers []kafka.Header) []kafka.Header {
	fields := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, fields)
	if len(fields) == 0 {
		return headers
	}

	keys := fields.Keys()
	sort.Strings(keys)

	for _, key := range keys {
		headers = setHeader(headers, key, fields.Get(key))
	}
	return headers
}

// ExtractTraceContext restores a remote span context from Kafka headers.
func ExtractTraceContext(ctx context.Context, headers []kafka.Header) context.Context {
	fields := make(propagation.MapCarrier, len(headers))
	for _, h := range headers {
		fields.Set(h.Key, string(h.Value))
	}
	return otel.GetTextMapPropagator().Extract(ctx, fields)
}

func setHeader(headers []kafka.Header, key, value string) []kafka.Header {
	for i := range headers {
		if headers[i].Key == key {
			headers[i].Value = []byte(value)
			return headers
		}
	}
	return append(headers, kafka.Header{Key: key, Value: []byte(value)})
}
