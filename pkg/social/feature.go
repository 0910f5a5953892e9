package social

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"burrow/pkg/apperr"
	"burrow/pkg/logger"
	"burrow/pkg/store"
)

// FeatureWindow is how long a featured flag survives before lazy expiry
// clears it on the next listing read.
const FeatureWindow = 72 * time.Hour

// SetFeatured enforces the at-most-one-featured invariant. Turning a
// post on clears every other featured post and stamps the target in one
// atomic batch; turning it off just clears the target. Rotation and
// expiry are both scan-then-mutate-many, so a rotation racing an expiry
// sweep can transiently leave two posts featured; the invariant settles
// on the next pass with no concurrent interference.
func SetFeatured(postID string, on bool) error {
	if !on {
		return store.Update(store.PostKey(postID), func(cur []byte, found bool) ([]byte, error) {
			if !found {
				return nil, apperr.NotFound("post not found: " + postID)
			}
			p, err := decodePost(cur)
			if err != nil {
				return nil, err
			}
			p.Featured = false
			p.FeaturedTS = 0
			return json.Marshal(p)
		})
	}

	return store.WithKeyLock(store.PostKey(postID), func() error {
		recs, err := store.ScanPrefix(store.PostPrefix)
		if err != nil {
			return err
		}
		wb := store.NewBatch()
		targetSeen := false
		for _, r := range recs {
			p, err := decodePost(r.Value)
			if err != nil {
				continue
			}
			switch {
			case p.ID == postID:
				p.Featured = true
				p.FeaturedTS = now().UTC().UnixNano()
				targetSeen = true
			case p.Featured:
				p.Featured = false
				p.FeaturedTS = 0
			default:
				continue
			}
			b, err := json.Marshal(p)
			if err != nil {
				return apperr.Internal("marshal post", err)
			}
			_ = wb.Set([]byte(r.Key), b, nil)
		}
		if !targetSeen {
			return apperr.NotFound("post not found: " + postID)
		}
		if err := store.ApplyBatch(wb); err != nil {
			return err
		}
		logger.Log.Info("post_featured", zap.String("post", postID))
		return nil
	})
}

// GetFeatured returns the currently featured post after running the
// expiry sweep, or NotFound when nothing is featured.
func GetFeatured() (string, error) {
	if _, err := ExpireStaleFeatured(); err != nil {
		return "", err
	}
	recs, err := store.ScanPrefix(store.PostPrefix)
	if err != nil {
		return "", err
	}
	for _, r := range recs {
		p, err := decodePost(r.Value)
		if err != nil {
			continue
		}
		if p.Featured {
			return p.ID, nil
		}
	}
	return "", apperr.NotFound("no featured post")
}

// ExpireStaleFeatured clears featured flags older than FeatureWindow and
// persists the clears in one batch. Expiry is lazy: it runs as a side
// effect of read paths, not on a schedule. Returns the cleared post ids.
func ExpireStaleFeatured() ([]string, error) {
	recs, err := store.ScanPrefix(store.PostPrefix)
	if err != nil {
		return nil, err
	}
	cutoff := now().UTC().Add(-FeatureWindow).UnixNano()
	wb := store.NewBatch()
	var cleared []string
	for _, r := range recs {
		p, err := decodePost(r.Value)
		if err != nil {
			continue
		}
		if !p.Featured || p.FeaturedTS >= cutoff {
			continue
		}
		p.Featured = false
		p.FeaturedTS = 0
		b, err := json.Marshal(p)
		if err != nil {
			continue
		}
		_ = wb.Set([]byte(r.Key), b, nil)
		cleared = append(cleared, p.ID)
	}
	if len(cleared) == 0 {
		return nil, nil
	}
	if err := store.ApplyBatch(wb); err != nil {
		return nil, err
	}
	logger.Log.Info("featured_expired", zap.Strings("posts", cleared))
	return cleared, nil
}
