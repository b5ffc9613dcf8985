// Package songgraph turns the Million Song Dataset and the Last.fm tagging
// dataset into node and relationship collections for a graph bulk load.
//
// An extraction has four stages. Interfaces for each stage and basic
// implementations live in this package; implementations which rely on other
// software are in sub-packages.
//
// 1. Manifest
//
//    Both catalogs are listed in line-delimited manifests, one file per line.
//    ReadManifest splits a manifest into line-aligned partitions which are
//    read concurrently. Entries may be local paths or, through a Resolver
//    such as the one in aws/s3, remote objects.
//
// 2. Reader
//
//    A MeasurementReader decodes one HDF5 track file (see msd) into a typed
//    MeasurementRecord, validates it, and drops it if its song and track ids
//    are in the ExclusionSet. A TaggingReader decodes one JSON document (see
//    lastfm) into a TaggingRecord. Both collections are read once and cached
//    by the Extractor.
//
// 3. Projection
//
//    Each output collection is a Projection: a pure function from one cached
//    record to zero or more CSV lines. Node collections and unweighted edges
//    are distinct, which is enforced through a Deduper (in memory, leveldb,
//    or bolt). Weighted edges are normalized per record with Normalize.
//
// 4. Output
//
//    An OutputStore (see file) stages each collection's partitions and
//    atomically swaps the new version into place on Commit.
package songgraph
