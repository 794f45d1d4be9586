package audio

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"codeberg.org/snonux/lexiforge/internal/logging"
)

// Keyer is implemented by providers whose output depends on settings
// beyond the name, e.g. voice or speed. The key is part of the cache key.
type Keyer interface {
	CacheKey() string
}

// sourcedProvider reports which provider actually produced the audio
type sourcedProvider interface {
	synthesizeFrom(ctx context.Context, text, lang string) ([]byte, Provider, error)
}

func cacheKey(p Provider) string {
	if k, ok := p.(Keyer); ok {
		return k.CacheKey()
	}
	return p.Name()
}

// CachedProvider stores synthesized audio on disk keyed by provider
// settings, language and text
type CachedProvider struct {
	next     Provider
	cacheDir string
}

// NewCachedProvider wraps next with an on-disk cache in cacheDir
func NewCachedProvider(next Provider, cacheDir string) (*CachedProvider, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &CachedProvider{next: next, cacheDir: cacheDir}, nil
}

// Synthesize returns cached audio or asks the wrapped provider
func (c *CachedProvider) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	cacheFile := c.getCacheFilePath(text, lang)
	if data, err := os.ReadFile(cacheFile); err == nil && len(data) > 0 {
		return data, nil
	}

	data, producer, err := c.synthesize(ctx, text, lang)
	if err != nil {
		return nil, err
	}
	// fallback audio is returned but not stored
	if cacheKey(producer) != cacheKey(c.next) {
		return data, nil
	}

	if err := os.MkdirAll(filepath.Dir(cacheFile), 0755); err == nil {
		if err := os.WriteFile(cacheFile, data, 0644); err != nil {
			logging.NewLogger(ctx).Warnf("failed to cache audio: %v", err)
		}
	}
	return data, nil
}

func (c *CachedProvider) synthesize(ctx context.Context, text, lang string) ([]byte, Provider, error) {
	if s, ok := c.next.(sourcedProvider); ok {
		return s.synthesizeFrom(ctx, text, lang)
	}
	data, err := c.next.Synthesize(ctx, text, lang)
	return data, c.next, err
}

// Name returns the wrapped provider name
func (c *CachedProvider) Name() string {
	return c.next.Name()
}

// IsAvailable delegates to the wrapped provider
func (c *CachedProvider) IsAvailable() error {
	return c.next.IsAvailable()
}

// getCacheFilePath generates a cache file path for the given text
func (c *CachedProvider) getCacheFilePath(text, lang string) string {
	h := md5.New()
	h.Write([]byte(cacheKey(c.next)))
	h.Write([]byte{0})
	h.Write([]byte(lang))
	h.Write([]byte{0})
	h.Write([]byte(text))
	hash := hex.EncodeToString(h.Sum(nil))

	// Use first 2 chars as subdirectory for better file system performance
	return filepath.Join(c.cacheDir, hash[:2], hash[2:]+".mp3")
}

// ClearCache removes all cached audio files
func (c *CachedProvider) ClearCache() error {
	return os.RemoveAll(c.cacheDir)
}

// GetCacheStats returns cache statistics
func (c *CachedProvider) GetCacheStats() (fileCount int, totalSize int64, err error) {
	err = filepath.Walk(c.cacheDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			fileCount++
			totalSize += info.Size()
		}
		return nil
	})
	return fileCount, totalSize, err
}
