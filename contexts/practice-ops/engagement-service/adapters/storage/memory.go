package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrUploadRejected = errors.New("upload rejected")
)

// Memory is an in-process object store. FailUploads and FailSigning simulate
// an unavailable backend.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte

	FailUploads bool
	FailSigning bool
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) Upload(_ context.Context, objectPath string, content io.Reader, _ string) (string, error) {
	if m.FailUploads {
		return "", ErrUploadRejected
	}
	payload, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectPath] = payload
	return "memory://" + objectPath, nil
}

func (m *Memory) SignedURL(_ context.Context, objectPath string, downloadName string, ttl time.Duration) (string, error) {
	if m.FailSigning {
		return "", ErrSigningDisabled
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, exists := m.objects[objectPath]; !exists {
		return "", ErrObjectNotFound
	}
	return "memory://" + objectPath + "?name=" + downloadName + "&ttl=" + ttl.String(), nil
}

func (m *Memory) Remove(_ context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectPath)
	return nil
}

func (m *Memory) Object(objectPath string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payload, exists := m.objects[objectPath]
	return bytes.Clone(payload), exists
}
