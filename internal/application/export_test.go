package application

import "time"

// SetPublishRetry shortens the event hand-off policy for a test.
func SetPublishRetry(attempts int, backoff time.Duration) (restore func()) {
	prevAttempts, prevBackoff := publishAttempts, publishBackoff
	publishAttempts, publishBackoff = attempts, backoff
	return func() { publishAttempts, publishBackoff = prevAttempts, prevBackoff }
}

// DummyHash exposes the hash compared on unknown sign-in addresses.
func DummyHash() string { return dummyHash() }
