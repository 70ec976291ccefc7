package service

// LoginGuard throttles credential-guessing against the login endpoint. Keys
// are caller-chosen; the delivery layer keys by normalized email.
type LoginGuard interface {
	// Check gates one login attempt for the key and counts it against the
	// sliding window. A rejection is a *errors.RateLimitError.
	Check(key string) error

	// RecordFailure notes a failed credential check. Enough consecutive
	// failures lock the key out entirely.
	RecordFailure(key string)

	// RecordSuccess resets the consecutive-failure streak for the key.
	RecordSuccess(key string)
}
