package shopdesk

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

const jpegQuality = 82

var errBadImage = errors.New("invalid image")

// processedImage is an upload after decoding, resizing and re-encoding.
type processedImage struct {
	Data     []byte
	Ext      string
	MimeType string
	Width    int
	Height   int
}

// processImage decodes an image from src, downscales it to maxWidth and
// re-encodes it. PNG input stays PNG so transparency survives; everything
// else becomes JPEG. Images declaring more than maxPixels pixels are
// rejected before their pixel data is decoded.
func processImage(src io.Reader, maxWidth, maxPixels int) (processedImage, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return processedImage{}, fmt.Errorf("read image: %w", err)
	}
	hdr, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return processedImage{}, fmt.Errorf("%w: %v", errBadImage, err)
	}
	if maxPixels > 0 && int64(hdr.Width)*int64(hdr.Height) > int64(maxPixels) {
		return processedImage{}, fmt.Errorf("%w: %dx%d exceeds %d pixels", errBadImage, hdr.Width, hdr.Height, maxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return processedImage{}, fmt.Errorf("%w: %v", errBadImage, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxWidth > 0 && w > maxWidth {
		newH := max(1, h*maxWidth/w)
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = maxWidth, newH
	}

	var buf bytes.Buffer
	out := processedImage{Width: w, Height: h}
	if format == "png" {
		if err := png.Encode(&buf, img); err != nil {
			return processedImage{}, fmt.Errorf("encode png: %w", err)
		}
		out.Ext, out.MimeType = ".png", "image/png"
	} else {
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return processedImage{}, fmt.Errorf("encode jpeg: %w", err)
		}
		out.Ext, out.MimeType = ".jpg", "image/jpeg"
	}
	out.Data = buf.Bytes()
	return out, nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if s := Slugify(base); s != "" {
		return s
	}
	return "image"
}

// uniqueFilename appends a counter until the name is free both on disk and
// in the media table.
func (a *App) uniqueFilename(ctx context.Context, base, ext string) (string, error) {
	candidate := base + ext
	for counter := 2; ; counter++ {
		_, statErr := os.Stat(filepath.Join(a.Config.UploadDir, candidate))
		taken, err := a.Store.MediaFilenameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if os.IsNotExist(statErr) && !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d%s", base, counter, ext)
	}
}

// SaveUpload processes an uploaded image, writes it to the upload directory
// and records it in the media library.
func (a *App) SaveUpload(ctx context.Context, src io.Reader, originalName, alt string) (MediaAsset, error) {
	img, err := processImage(src, a.Config.MaxImageWidth, a.Config.MaxImagePixels)
	if err != nil {
		return MediaAsset{}, err
	}
	filename, err := a.uniqueFilename(ctx, slugifyFilename(originalName), img.Ext)
	if err != nil {
		return MediaAsset{}, err
	}
	if err := os.MkdirAll(a.Config.UploadDir, 0o755); err != nil {
		return MediaAsset{}, fmt.Errorf("create upload dir: %w", err)
	}
	dest := filepath.Join(a.Config.UploadDir, filename)
	if err := os.WriteFile(dest, img.Data, 0o644); err != nil {
		return MediaAsset{}, fmt.Errorf("write image: %w", err)
	}
	asset, err := a.Store.CreateMedia(ctx, MediaAsset{
		ID:           uuid.New(),
		Filename:     filename,
		OriginalName: originalName,
		URL:          path.Join(a.Config.UploadURLPrefix, filename),
		MimeType:     img.MimeType,
		Width:        img.Width,
		Height:       img.Height,
		Size:         len(img.Data),
		Alt:          strings.TrimSpace(alt),
	})
	if err != nil {
		_ = os.Remove(dest)
		return MediaAsset{}, err
	}
	return asset, nil
}

// RemoveMedia deletes the media record and its file.
func (a *App) RemoveMedia(ctx context.Context, id uuid.UUID) error {
	asset, err := a.Store.DeleteMedia(ctx, id)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(a.Config.UploadDir, asset.Filename)); err != nil && !os.IsNotExist(err) {
		a.Logger.Warn("remove media file", zap.String("filename", asset.Filename), zap.Error(err))
	}
	return nil
}
