package fillmask

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gomlx/go-huggingface/hub"
)

// Tokenizer files consulted for the mask token, in order.
var tokenizerFiles = []string{"special_tokens_map.json", "tokenizer_config.json"}

// fileDownloader fetches one file of a model repository and returns its
// local path. *hub.Repo implements this implicitly.
type fileDownloader interface {
	DownloadFile(fileName string) (string, error)
}

var _ fileDownloader = (*hub.Repo)(nil)

type hubSettings struct {
	token    string
	cacheDir string
	repo     fileDownloader
}

// HubOption configures ResolveMaskToken.
type HubOption func(*hubSettings)

// WithHubToken authenticates downloads (gated or private models).
func WithHubToken(token string) HubOption {
	return func(s *hubSettings) {
		s.token = token
	}
}

// WithCacheDir sets where tokenizer files are cached.
func WithCacheDir(dir string) HubOption {
	return func(s *hubSettings) {
		s.cacheDir = dir
	}
}

// withDownloader replaces the hub repository (for testing).
func withDownloader(d fileDownloader) HubOption {
	return func(s *hubSettings) {
		s.repo = d
	}
}

// ResolveMaskToken reads the mask token of a HuggingFace model from its
// tokenizer files. Files are downloaded once and served from the cache after.
func ResolveMaskToken(modelID string, opts ...HubOption) (string, error) {
	if modelID == "" {
		return "", ErrEmptyModel
	}

	var s hubSettings
	for _, opt := range opts {
		opt(&s)
	}
	if s.repo == nil {
		repo := hub.New(modelID).WithAuth(s.token)
		if s.cacheDir != "" {
			repo = repo.WithCacheDir(s.cacheDir)
		}
		s.repo = repo
	}

	var downloadErrs []error
	for _, name := range tokenizerFiles {
		path, err := s.repo.DownloadFile(name)
		if err != nil {
			downloadErrs = append(downloadErrs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		mask, err := readMaskToken(path)
		if err != nil {
			return "", fmt.Errorf("model %s: %s: %w", modelID, name, err)
		}
		if mask != "" {
			return mask, nil
		}
	}

	if len(downloadErrs) == len(tokenizerFiles) {
		return "", fmt.Errorf("model %s: %w: %w", modelID, ErrModelUnavailable, errors.Join(downloadErrs...))
	}
	return "", fmt.Errorf("model %s: %w", modelID, ErrMaskTokenNotFound)
}

// readMaskToken extracts mask_token from a tokenizer JSON file. The value
// is either a plain string or an added-token object with a content field.
// A file without the key yields "".
func readMaskToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read tokenizer file: %w", err)
	}

	var doc struct {
		MaskToken json.RawMessage `json:"mask_token"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("failed to parse tokenizer file: %w", err)
	}
	if len(doc.MaskToken) == 0 || string(doc.MaskToken) == "null" {
		return "", nil
	}

	var token string
	if err := json.Unmarshal(doc.MaskToken, &token); err == nil {
		return token, nil
	}
	var added struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(doc.MaskToken, &added); err != nil {
		return "", fmt.Errorf("unexpected mask_token value %s: %w", doc.MaskToken, ErrMaskTokenNotFound)
	}
	return added.Content, nil
}
