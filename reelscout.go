// Package reelscout aggregates media metadata (dramas, anime, movies and
// bollywood titles) from third-party listing sites, normalizes it into a
// shared catalog and serves personalized recommendations over HTTP.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, rod/, badger/).
package reelscout
