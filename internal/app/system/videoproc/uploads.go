package videoproc

import (
	"context"

	"github.com/bemyforce/bemyforce/internal/app/system/objectstore"
	"github.com/bemyforce/bemyforce/internal/domain/models"
)

// Normalizer recompresses one video. *Processor implements it.
type Normalizer interface {
	Process(ctx context.Context, in Input) (Output, error)
}

// NormalizeFiles replaces the first video in files with its recompressed
// form and returns its duration. It returns nil when there is no video.
func NormalizeFiles(ctx context.Context, n Normalizer, files []objectstore.File) (*int, error) {
	for i, f := range files {
		if objectstore.Classify(f.ContentType) != models.AssetVideo {
			continue
		}
		out, err := n.Process(ctx, Input{Data: f.Data, ContentType: f.ContentType})
		if err != nil {
			return nil, err
		}
		files[i].Data = out.Data
		files[i].Size = int64(len(out.Data))
		d := out.Duration
		return &d, nil
	}
	return nil, nil
}
