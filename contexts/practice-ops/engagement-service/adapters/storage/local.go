package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidObjectPath = errors.New("invalid object path")
	ErrInvalidLink       = errors.New("invalid or expired download link")
	ErrSigningDisabled   = errors.New("link signing key not configured")
)

// linkClaims bind a download token to one object and one download name.
type linkClaims struct {
	ObjectPath   string `json:"path"`
	DownloadName string `json:"name"`
	jwt.RegisteredClaims
}

// Local keeps objects on the filesystem under Root and serves them through
// signed download links rooted at BaseURL.
type Local struct {
	root       string
	baseURL    string
	signingKey []byte
	now        func() time.Time
}

func NewLocal(root string, baseURL string, signingKey string) (*Local, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Local{
		root:       root,
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		signingKey: []byte(signingKey),
		now:        time.Now,
	}, nil
}

func (l *Local) Upload(ctx context.Context, objectPath string, content io.Reader, _ string) (string, error) {
	target, err := l.resolve(objectPath)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}
	file, err := os.Create(target)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(file, content); err != nil {
		_ = file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return l.objectURL(objectPath), nil
}

func (l *Local) SignedURL(_ context.Context, objectPath string, downloadName string, ttl time.Duration) (string, error) {
	if len(l.signingKey) == 0 {
		return "", ErrSigningDisabled
	}
	if _, err := l.resolve(objectPath); err != nil {
		return "", err
	}
	now := l.now().UTC()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, linkClaims{
		ObjectPath:   objectPath,
		DownloadName: downloadName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}).SignedString(l.signingKey)
	if err != nil {
		return "", err
	}
	return l.objectURL(objectPath) + "?token=" + url.QueryEscape(token), nil
}

func (l *Local) Remove(_ context.Context, objectPath string) error {
	target, err := l.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// VerifyLink checks a download token for objectPath and returns the name the
// file should be served under.
func (l *Local) VerifyLink(objectPath string, token string) (string, error) {
	if len(l.signingKey) == 0 {
		return "", ErrSigningDisabled
	}
	claims := &linkClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return l.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(l.now),
	)
	if err != nil || !parsed.Valid || claims.ObjectPath != objectPath {
		return "", ErrInvalidLink
	}
	return claims.DownloadName, nil
}

// Open returns the stored object for streaming.
func (l *Local) Open(objectPath string) (*os.File, error) {
	target, err := l.resolve(objectPath)
	if err != nil {
		return nil, err
	}
	return os.Open(target)
}

func (l *Local) objectURL(objectPath string) string {
	segments := strings.Split(objectPath, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return l.baseURL + "/v1/files/" + strings.Join(segments, "/")
}

func (l *Local) resolve(objectPath string) (string, error) {
	objectPath = strings.TrimSpace(objectPath)
	cleaned := path.Clean("/" + objectPath)
	if cleaned == "/" || strings.TrimPrefix(cleaned, "/") != objectPath {
		return "", ErrInvalidObjectPath
	}
	return filepath.Join(l.root, filepath.FromSlash(strings.TrimPrefix(cleaned, "/"))), nil
}
