// Package storage provides S3 storage integration.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"math/rand"
	"path"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	puzzlePrefix = "puzzles/"
	sharePrefix  = "shared/"
)

// ErrNoPuzzleImages is returned when the bucket has no usable puzzle images.
var ErrNoPuzzleImages = errors.New("no puzzle images available")

var supportedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// S3ClientInterface defines the interface for S3 operations.
type S3ClientInterface interface {
	GetObject(key string) ([]byte, error)
	PutObject(key string, data []byte) error
	ListObjects(prefix string) ([]string, error)
}

// ImageStore serves puzzle images from S3.
type ImageStore struct {
	client        S3ClientInterface
	bucket        string
	cloudfrontURL string
}

// NewImageStore creates a new ImageStore.
func NewImageStore(client S3ClientInterface, bucket string, cloudfrontURL string) *ImageStore {
	return &ImageStore{
		client:        client,
		bucket:        bucket,
		cloudfrontURL: strings.TrimSuffix(cloudfrontURL, "/"),
	}
}

// ListPuzzleImages returns the keys of every decodable puzzle image.
func (s *ImageStore) ListPuzzleImages() ([]string, error) {
	keys, err := s.client.ListObjects(puzzlePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list puzzle images: %w", err)
	}

	images := make([]string, 0, len(keys))
	for _, key := range keys {
		if supportedExtensions[strings.ToLower(path.Ext(key))] {
			images = append(images, key)
		}
	}
	return images, nil
}

// GetRandomPuzzleImage picks a random puzzle image and returns its key and decoded image.
func (s *ImageStore) GetRandomPuzzleImage() (string, image.Image, error) {
	keys, err := s.ListPuzzleImages()
	if err != nil {
		return "", nil, err
	}
	if len(keys) == 0 {
		return "", nil, ErrNoPuzzleImages
	}

	key := keys[rand.Intn(len(keys))]
	img, err := s.GetPuzzleImage(key)
	if err != nil {
		return "", nil, err
	}
	return key, img, nil
}

// GetPuzzleImage fetches and decodes the image stored under key.
func (s *ImageStore) GetPuzzleImage(key string) (image.Image, error) {
	data, err := s.client.GetObject(key)
	if err != nil {
		return nil, fmt.Errorf("failed to get puzzle image: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode puzzle image: %w", err)
	}

	return img, nil
}

// ImageURL returns the CloudFront URL for a stored object.
func (s *ImageStore) ImageURL(key string) string {
	return fmt.Sprintf("%s/%s", s.cloudfrontURL, key)
}

// UploadSnapshot uploads a rendered board image and returns its CloudFront URL.
func (s *ImageStore) UploadSnapshot(img image.Image) (string, error) {
	key := sharePrefix + uuid.New().String() + ".png"

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode snapshot image: %w", err)
	}

	if err := s.client.PutObject(key, buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to upload snapshot image: %w", err)
	}

	return s.ImageURL(key), nil
}
