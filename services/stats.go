package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gallerybot/types"

	"github.com/rs/zerolog/log"
)

type StatsAggregator struct {
	path  string
	store *Store
	mu    sync.Mutex
}

func NewStatsAggregator(dataDir string, store *Store) *StatsAggregator {
	return &StatsAggregator{
		path:  filepath.Join(dataDir, "stats.json"),
		store: store,
	}
}

// Recompute derives the snapshot from the store and persists it. A failed
// write is logged; the caller still gets the fresh snapshot.
func (s *StatsAggregator) Recompute() *types.Stats {
	posts := s.store.Load()

	snap := &types.Stats{
		TotalPosts: int64(len(posts)),
		LastUpdate: time.Now().UTC().Format(time.RFC3339),
	}
	for _, post := range posts {
		snap.TotalViews += post.Views
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.MarshalIndent(snap, "", "  ")
	if err == nil {
		tmp := s.path + ".tmp"
		if err = os.WriteFile(tmp, b, 0644); err == nil {
			err = os.Rename(tmp, s.path)
		}
	}
	if err != nil {
		log.Error().Err(err).Msg("stats snapshot write failed")
	}

	return snap
}
