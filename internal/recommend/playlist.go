package recommend

import (
	"math/rand"
	"sync"
	"time"

	"github.com/soaringjerry/Sanctuary/internal/models"
)

const (
	// DefaultPlaylistSize is the playlist cap of the current player.
	DefaultPlaylistSize = 9
	// LegacyPlaylistSize is the cap used by the earlier player revision.
	LegacyPlaylistSize = 5

	perGenreTake = 2
)

// Shuffler produces a uniform random permutation. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Random is a Shuffler safe for concurrent use.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom seeds a shuffler. A zero seed uses the current time.
func NewRandom(seed int64) *Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	//nolint:gosec // playlist shuffling does not need a cryptographic source
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(n, swap)
}

// BuildPlaylist walks the ranked genres, drawing up to two unused tracks of each
// genre at random, and stops once size tracks are collected. If the genres run out
// first, the rest is drawn at random from the unused catalog. Tracks are
// deduplicated by id. A nil shuffler keeps catalog order.
func BuildPlaylist(genres []Genre, catalog []models.Track, size int, shuffler Shuffler) []models.Track {
	if size <= 0 || len(catalog) == 0 {
		return []models.Track{}
	}
	used := make(map[string]struct{}, size)
	out := make([]models.Track, 0, min(size, len(catalog)))

	unused := func(keep func(models.Track) bool) []models.Track {
		var pool []models.Track
		for _, t := range catalog {
			if _, ok := used[t.ID]; ok {
				continue
			}
			if keep == nil || keep(t) {
				pool = append(pool, t)
			}
		}
		shuffle(shuffler, pool)
		return pool
	}
	take := func(pool []models.Track, n int) {
		for _, t := range pool {
			if n == 0 || len(out) >= size {
				return
			}
			if _, ok := used[t.ID]; ok {
				continue
			}
			used[t.ID] = struct{}{}
			out = append(out, t)
			n--
		}
	}

	for _, g := range genres {
		if len(out) >= size {
			return out
		}
		genre := string(g)
		pool := unused(func(t models.Track) bool { return t.Genre == genre })
		take(pool, min(perGenreTake, size-len(out)))
	}
	if len(out) < size {
		take(unused(nil), size-len(out))
	}
	return out
}

func shuffle(s Shuffler, tracks []models.Track) {
	if s == nil || len(tracks) < 2 {
		return
	}
	s.Shuffle(len(tracks), func(i, j int) { tracks[i], tracks[j] = tracks[j], tracks[i] })
}
