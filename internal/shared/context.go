package shared

import "context"

type customerContextKey struct{}

type deviceContextKey struct{}

// ContextWithCustomerID stores the authenticated customer id in context.
func ContextWithCustomerID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, customerContextKey{}, id)
}

// CustomerIDFromContext extracts the authenticated customer id, zero when absent.
func CustomerIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(customerContextKey{}).(int64)
	return id
}

// ContextWithDeviceKey stores the opaque device key in context.
func ContextWithDeviceKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, deviceContextKey{}, key)
}

// DeviceKeyFromContext extracts the device key from context.
func DeviceKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(deviceContextKey{}).(string)
	return key
}
