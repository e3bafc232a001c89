// Package livekenceng is the HTTP client for the livekenceng.com member API,
// which fronts Shopee Live.
//
// It implements the session, application and catalog gateways consumed by the
// rotation core. Failed calls are mapped to domain.GatewayError kinds so the
// error policy can classify them without knowing HTTP.
package livekenceng
