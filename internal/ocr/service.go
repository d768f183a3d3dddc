package ocr

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/plaum/appointment-backend/internal/models"
)

// Service fronts the recognition engine. Engine construction is expensive
// (the backend loads language models), so it happens at most once: the first
// caller triggers it, concurrent cold-start callers share the in-flight
// initialization through singleflight, and a failed initialization is
// retried on the next call instead of being cached.
type Service struct {
	NewEngine func(ctx context.Context) (Engine, error)

	group  singleflight.Group
	mu     sync.Mutex
	engine Engine
}

// ExtractText normalizes the uploaded image and runs recognition on the
// shared engine.
func (s *Service) ExtractText(ctx context.Context, imageBytes []byte) (models.ExtractionResult, error) {
	png, err := NormalizeImage(imageBytes)
	if err != nil {
		return models.ExtractionResult{}, err
	}
	engine, err := s.sharedEngine(ctx)
	if err != nil {
		return models.ExtractionResult{}, err
	}
	return engine.Recognize(ctx, png)
}

func (s *Service) sharedEngine(ctx context.Context) (Engine, error) {
	s.mu.Lock()
	engine := s.engine
	s.mu.Unlock()
	if engine != nil {
		return engine, nil
	}

	v, err, _ := s.group.Do("engine", func() (any, error) {
		// Re-check under the flight: a caller that lost the race to a
		// completed initialization must not create a second engine.
		s.mu.Lock()
		if s.engine != nil {
			e := s.engine
			s.mu.Unlock()
			return e, nil
		}
		s.mu.Unlock()

		e, err := s.NewEngine(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.engine = e
		s.mu.Unlock()
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Engine), nil
}
