package songgraph

// MeasurementDecoder turns one local measurement file into a typed record. It
// performs no filtering. Implementations must be safe for concurrent use.
type MeasurementDecoder interface {
	DecodeMeasurement(path string) (*MeasurementRecord, error)
}

// MeasurementIDDecoder is implemented by measurement decoders which can read
// just the song and track ids of a file, so excluded files need not decode.
type MeasurementIDDecoder interface {
	DecodeIDs(path string) (songID, trackID string, err error)
}

// TaggingDecoder turns one local tagging file into a typed record.
// Implementations must be safe for concurrent use.
type TaggingDecoder interface {
	DecodeTagging(path string) (*TaggingRecord, error)
}

// Deduper remembers which keys have been seen per collection. Add returns true
// the first time a key is added to a collection, and false afterwards.
// Implementations must be safe for concurrent use.
type Deduper interface {
	Add(collection string, key []byte) (bool, error)
	Close() error
}

// OutputStore creates named output collections.
type OutputStore interface {
	// Create starts a new version of the named collection with the given
	// number of partitions. Nothing is visible to consumers until Commit.
	Create(name string, partitions int) (CollectionWriter, error)
}

// CollectionWriter receives the lines of one output collection. WriteLine may
// be called concurrently for different partitions, but not for the same one.
type CollectionWriter interface {
	WriteLine(partition int, line string) error
	// Commit atomically replaces any previous version of the collection.
	Commit() error
	// Abort discards everything written so far.
	Abort() error
}
