package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gallerybot/types"

	"github.com/rs/zerolog/log"
)

// Store keeps the whole post list in one JSON file, newest first. Every
// mutation is a read-modify-write of the full file under a single lock, so
// a view increment can not erase a concurrent commit.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, os.ModePerm); err != nil {
		return nil, err
	}

	s := &Store{path: filepath.Join(dataDir, "posts.json")}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		if err := s.write([]types.Post{}); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Load never fails: a missing or corrupt file degrades to an empty list.
func (s *Store) Load() []types.Post {
	b, err := os.ReadFile(s.path)
	if err != nil {
		log.Warn().Err(err).Msg("posts file unreadable, serving empty list")
		return []types.Post{}
	}

	var posts []types.Post

	if err = json.Unmarshal(b, &posts); err != nil {
		log.Warn().Err(err).Msg("posts file malformed, serving empty list")
		return []types.Post{}
	}
	if posts == nil {
		posts = []types.Post{}
	}

	return posts
}

func (s *Store) write(posts []types.Post) error {
	b, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"

	if err = os.WriteFile(tmp, b, 0644); err != nil {
		return err
	}

	return os.Rename(tmp, s.path)
}

// Add prepends a post and rewrites the file.
func (s *Store) Add(post types.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := append([]types.Post{post}, s.Load()...)

	return s.write(posts)
}

// IncrementViews bumps the counter for id. An unknown id is a no-op; the
// bool reports whether anything was written.
func (s *Store) IncrementViews(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := s.Load()

	for i := range posts {
		if posts[i].Id == id {
			posts[i].Views++
			return true, s.write(posts)
		}
	}

	return false, nil
}

// Sorted returns all posts ordered by creation time descending. Ids are
// creation timestamps, so storage order is never trusted.
func (s *Store) Sorted() []types.Post {
	posts := s.Load()

	sort.SliceStable(posts, func(i, j int) bool { return posts[i].Id > posts[j].Id })

	return posts
}
