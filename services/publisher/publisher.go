package publisher

// Publisher represents a service for publishing listing batches
type Publisher interface {
	// Publish publishes a message to a stream under the given field key
	Publish(key string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}

// FieldKey returns the stream field a marketplace's batches are published under
func FieldKey(marketplace string) string {
	return "b64_listings:" + marketplace
}
