package stack

import (
	"context"
	"fmt"

	"github.com/docker/go-units"
	"golang.org/x/sync/errgroup"

	"github.com/sarth-shah20/llmstack/internal/docker"
)

// RequiredImages returns every image the config needs: Open WebUI, Tika,
// then the extra services in config order. Duplicates keep their first position.
func (s *Stack) RequiredImages() []string {
	images := []string{
		PrimaryImage + ":" + s.cfg.OpenWebUIImageTag,
		AuxiliaryImage + ":" + s.cfg.TikaImageTag,
	}
	for _, svc := range s.cfg.ExtraBackendServices {
		images = append(images, svc.Image)
	}

	seen := make(map[string]bool, len(images))
	unique := images[:0]
	for _, img := range images {
		if seen[img] {
			continue
		}
		seen[img] = true
		unique = append(unique, img)
	}
	return unique
}

// PullImages pulls every required image, even ones already present; the
// engine's layer cache makes repeated pulls cheap. The first failure aborts
// the pass. With pull_concurrency above one, pulls run in parallel and the
// first failure cancels the others.
func (s *Stack) PullImages(ctx context.Context) error {
	images := s.RequiredImages()

	if s.cfg.PullConcurrency <= 1 {
		for _, img := range images {
			if err := s.pullImage(ctx, img); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.PullConcurrency)
	for _, img := range images {
		img := img
		g.Go(func() error {
			return s.pullImage(gctx, img)
		})
	}
	return g.Wait()
}

func (s *Stack) pullImage(ctx context.Context, image string) error {
	s.log.Info("pulling image", "image", image)

	err := s.engine.PullImage(ctx, image, func(p docker.PullProgress) {
		if p.Total > 0 {
			s.log.Debug("pull progress", "image", image, "layer", p.ID, "status", p.Status,
				"progress", units.HumanSize(float64(p.Current))+"/"+units.HumanSize(float64(p.Total)))
			return
		}
		s.log.Debug("pull progress", "image", image, "layer", p.ID, "status", p.Status)
	})
	if err != nil {
		return fmt.Errorf("pull %s: %w", image, err)
	}
	return nil
}
