package common

// AuthenticationHeaderName is the request header that carries the raw
// session token on protected routes.
const AuthenticationHeaderName = "Authentication"

// SessionTokenBytes is the number of random bytes behind a session token.
// The hex-encoded token is twice as long.
const SessionTokenBytes = 32
