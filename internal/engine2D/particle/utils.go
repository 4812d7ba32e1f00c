package particle

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"
)

// preload decodes every source in parallel. The first failure cancels the
// rest and is returned; images are in source order.
func preload(ctx context.Context, decode Decoder, srcs []string) ([]image.Image, error) {
	images := make([]image.Image, len(srcs))
	g, gctx := errgroup.WithContext(ctx)

	for i, src := range srcs {
		g.Go(func() error {
			img, err := decode(gctx, src)
			if err != nil {
				return fmt.Errorf("load particle sprite %s: %w", src, err)
			}
			images[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}
