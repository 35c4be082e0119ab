package common

// UserIDHeaderName carries the caller's claimed identity on item requests.
const UserIDHeaderName = "X-User-ID"

// RequestIDHeaderName is echoed back on every response.
const RequestIDHeaderName = "X-Request-ID"
