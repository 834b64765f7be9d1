package common

// AuthorizationHeaderName is the HTTP header (and gRPC metadata key, lowercased)
// carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is the scheme prefix expected in the authorization header.
const BearerPrefix = "Bearer "
