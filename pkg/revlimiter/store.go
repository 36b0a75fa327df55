package revlimiter

import (
	"time"

	"github.com/yourusername/revlimiter/core"
)

// bucketStore owns the two-level map from resource ID to requester ID to
// bucket state. It is a plain data structure: all methods must be called
// with the owning Throttler's guard held.
type bucketStore struct {
	resources map[string]map[string]*core.BucketState
}

func newBucketStore() *bucketStore {
	return &bucketStore{
		resources: make(map[string]map[string]*core.BucketState),
	}
}

// getOrCreate returns the bucket for (resourceID, requesterID), lazily
// initializing the resource collection and the bucket itself if absent.
// A fresh bucket starts at BucketStart with LastAccess set to now.
func (s *bucketStore) getOrCreate(resourceID, requesterID string, settings core.Settings, now time.Time) *core.BucketState {
	collection, ok := s.resources[resourceID]
	if !ok {
		collection = make(map[string]*core.BucketState)
		s.resources[resourceID] = collection
	}

	st, ok := collection[requesterID]
	if !ok {
		st = core.NewBucketState(settings, now)
		collection[requesterID] = st
	}

	return st
}

// forEach applies fn to every stored bucket. Deleting the current entry
// from inside fn (via remove) is safe; Go maps permit deletion during
// range iteration.
func (s *bucketStore) forEach(fn func(resourceID, requesterID string, st *core.BucketState)) {
	for resourceID, collection := range s.resources {
		for requesterID, st := range collection {
			fn(resourceID, requesterID, st)
		}
	}
}

// remove deletes a bucket if present. Removing an unknown key is a no-op.
func (s *bucketStore) remove(resourceID, requesterID string) {
	collection, ok := s.resources[resourceID]
	if !ok {
		return
	}
	delete(collection, requesterID)
	if len(collection) == 0 {
		delete(s.resources, resourceID)
	}
}

// size returns the number of live buckets across all resources.
func (s *bucketStore) size() int {
	n := 0
	for _, collection := range s.resources {
		n += len(collection)
	}
	return n
}
