package domain

import "errors"

// BuildRequest describes an image build from a git repository.
type BuildRequest struct {
	RepoURL    string `json:"repo_url"`
	Image      string `json:"image"`
	Branch     string `json:"branch,omitempty"`
	Dockerfile string `json:"dockerfile,omitempty"`
}

// BuildResult is returned once an image build has finished.
type BuildResult struct {
	Image    string `json:"image"`
	RepoURL  string `json:"repo_url"`
	Revision string `json:"revision,omitempty"`
}

// DefaultDockerfile is used when a build request names no Dockerfile.
const DefaultDockerfile = "Dockerfile"

// Validate checks the fields a build cannot run without.
func (r BuildRequest) Validate() error {
	switch {
	case r.RepoURL == "":
		return errors.New("repo_url is required")
	case r.Image == "":
		return errors.New("image is required")
	}
	return nil
}
