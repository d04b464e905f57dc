package reliability

// IsTransientHTTPStatus classifies provider HTTP statuses that indicate a
// passing condition rather than a broken request. The relay never retries,
// so the classification only drives logging and metrics labels.
func IsTransientHTTPStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// FailureKind labels a provider failure for metrics.
func FailureKind(code int) string {
	if IsTransientHTTPStatus(code) {
		return "transient"
	}
	return "permanent"
}
