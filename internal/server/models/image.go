package models

// Image is one picture of a feed. Exactly one of Data and StorageKey is set:
// Data for the database blob backend, StorageKey for object storage.
type Image struct {
	FeedID      string
	Position    int
	ContentType string
	Data        []byte
	StorageKey  string
}
