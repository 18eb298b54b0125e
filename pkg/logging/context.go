package logging

import (
	"context"
)

const (
	TraceIDKey     = "trace_id"
	RequestIDKey   = "request_id"
	ClientIDKey    = "client_id"
	ServiceNameKey = "service_name"
)

type ctxKey struct{}

// requestFields is stored by value; every With* call stores a modified copy.
type requestFields struct {
	traceID     string
	requestID   string
	clientID    string
	serviceName string
}

func fieldsFrom(ctx context.Context) requestFields {
	f, _ := ctx.Value(ctxKey{}).(requestFields)
	return f
}

func with(ctx context.Context, set func(*requestFields)) context.Context {
	f := fieldsFrom(ctx)
	set(&f)
	return context.WithValue(ctx, ctxKey{}, f)
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return with(ctx, func(f *requestFields) { f.traceID = traceID })
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return with(ctx, func(f *requestFields) { f.requestID = requestID })
}

// WithClientID records the rate-limit key of the caller.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return with(ctx, func(f *requestFields) { f.clientID = clientID })
}

func WithServiceName(ctx context.Context, serviceName string) context.Context {
	return with(ctx, func(f *requestFields) { f.serviceName = serviceName })
}

func GetTraceID(ctx context.Context) string     { return fieldsFrom(ctx).traceID }
func GetRequestID(ctx context.Context) string   { return fieldsFrom(ctx).requestID }
func GetClientID(ctx context.Context) string    { return fieldsFrom(ctx).clientID }
func GetServiceName(ctx context.Context) string { return fieldsFrom(ctx).serviceName }

// GetLogFields flattens the non-empty request fields into zap key/value pairs.
func GetLogFields(ctx context.Context) []interface{} {
	f := fieldsFrom(ctx)
	fields := make([]interface{}, 0, 8)

	for _, kv := range [][2]string{
		{TraceIDKey, f.traceID},
		{RequestIDKey, f.requestID},
		{ClientIDKey, f.clientID},
		{ServiceNameKey, f.serviceName},
	} {
		if kv[1] != "" {
			fields = append(fields, kv[0], kv[1])
		}
	}

	return fields
}
