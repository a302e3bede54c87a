package ports

import (
	"context"

	"github.com/melih/lighthouse-mcp/internal/core/domain"
)

// BuilderService builds container images from source repositories.
type BuilderService interface {
	// BuildImage clones req.RepoURL and builds its Dockerfile, tagging the
	// result as req.Image.
	BuildImage(ctx context.Context, req domain.BuildRequest) (domain.BuildResult, error)
}
