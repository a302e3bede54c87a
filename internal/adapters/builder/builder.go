// Package builder builds images from git repositories on the local engine.
package builder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/melih/lighthouse-mcp/internal/core/domain"
	"github.com/melih/lighthouse-mcp/internal/logging"
)

type imageAPI interface {
	ImageBuild(ctx context.Context, buildContext io.Reader, options types.ImageBuildOptions) (types.ImageBuildResponse, error)
}

type cloneFunc func(ctx context.Context, dir string, opts *git.CloneOptions) (*git.Repository, error)

func plainClone(ctx context.Context, dir string, opts *git.CloneOptions) (*git.Repository, error) {
	return git.PlainCloneContext(ctx, dir, false, opts)
}

type Adapter struct {
	cli   imageAPI
	clone cloneFunc
	log   *logging.Logger
}

// NewBuilderAdapter connects to the engine at host, or to the environment's
// engine when host is empty.
func NewBuilderAdapter(host string, log *logging.Logger) (*Adapter, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli, clone: plainClone, log: log}, nil
}

// BuildImage clones a repo and builds a Docker image
func (a *Adapter) BuildImage(ctx context.Context, req domain.BuildRequest) (domain.BuildResult, error) {
	if err := req.Validate(); err != nil {
		return domain.BuildResult{}, err
	}
	dockerfile := req.Dockerfile
	if dockerfile == "" {
		dockerfile = domain.DefaultDockerfile
	}

	tmpDir, err := os.MkdirTemp("", "lighthouse-build-*")
	if err != nil {
		return domain.BuildResult{}, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	a.log.Info().Str("repo", req.RepoURL).Str("branch", req.Branch).Msg("cloning repository")
	cloneOpts := &git.CloneOptions{
		URL:      req.RepoURL,
		Progress: a.log.Writer(),
		Depth:    1,
	}
	if req.Branch != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(req.Branch)
		cloneOpts.SingleBranch = true
	}
	repo, err := a.clone(ctx, tmpDir, cloneOpts)
	if err != nil {
		return domain.BuildResult{}, fmt.Errorf("failed to clone repo: %w", err)
	}

	var revision string
	if head, err := repo.Head(); err == nil {
		revision = head.Hash().String()
	}

	tar, err := archive.TarWithOptions(tmpDir, &archive.TarOptions{ExcludePatterns: []string{".git"}})
	if err != nil {
		return domain.BuildResult{}, fmt.Errorf("failed to create build context: %w", err)
	}
	defer tar.Close()

	a.log.Info().Str("image", req.Image).Str("revision", revision).Msg("building image")
	resp, err := a.cli.ImageBuild(ctx, tar, types.ImageBuildOptions{
		Tags:       []string{req.Image},
		Dockerfile: dockerfile,
		Remove:     true,
	})
	if err != nil {
		return domain.BuildResult{}, fmt.Errorf("failed to build image: %w", err)
	}
	defer resp.Body.Close()

	if err := a.drain(resp.Body); err != nil {
		return domain.BuildResult{}, fmt.Errorf("failed to build image: %w", err)
	}

	a.log.Info().Str("image", req.Image).Msg("image built")
	return domain.BuildResult{Image: req.Image, RepoURL: req.RepoURL, Revision: revision}, nil
}

// drain reads the build stream to the end. The engine reports build failures
// inside the stream rather than through the HTTP status.
func (a *Adapter) drain(body io.Reader) error {
	dec := json.NewDecoder(body)
	for {
		var msg jsonmessage.JSONMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading build output: %w", err)
		}
		if msg.Error != nil {
			return errors.New(msg.Error.Message)
		}
		if msg.ErrorMessage != "" {
			return errors.New(msg.ErrorMessage)
		}
		if line := strings.TrimSpace(msg.Stream); line != "" {
			a.log.Debug().Str("output", line).Msg("build")
		}
	}
}
