package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cloudName, apiKey, apiSecret, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &Cloudinary{cld: cld, folder: folder}, nil
}

func (c *Cloudinary) upload(ctx context.Context, file any, params uploader.UploadParams) (*uploader.UploadResult, error) {
	res, err := c.cld.Upload.Upload(ctx, file, params)
	if err != nil {
		return nil, fmt.Errorf("%w: cloudinary: %v", ErrUpload, err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("%w: cloudinary: %s", ErrUpload, res.Error.Message)
	}
	return res, nil
}

func (c *Cloudinary) UploadDataURI(ctx context.Context, dataURI string) (string, error) {
	res, err := c.upload(ctx, dataURI, uploader.UploadParams{
		Folder:       c.folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", err
	}
	return res.SecureURL, nil
}

func (c *Cloudinary) RemoveBackground(ctx context.Context, filename string, image io.Reader) (string, error) {
	res, err := c.upload(ctx, image, uploader.UploadParams{
		Folder:         c.folder,
		ResourceType:   "image",
		Transformation: "e_background_removal",
	})
	if err != nil {
		return "", err
	}
	return res.SecureURL, nil
}

func (c *Cloudinary) RemoveObject(ctx context.Context, filename string, image io.Reader, object string) (string, error) {
	res, err := c.upload(ctx, image, uploader.UploadParams{
		Folder:       c.folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", err
	}

	img, err := c.cld.Image(res.PublicID)
	if err != nil {
		return "", fmt.Errorf("cloudinary: image %s: %w", res.PublicID, err)
	}
	img.Transformation = GenRemoveTransformation(object)
	u, err := img.String()
	if err != nil {
		return "", fmt.Errorf("cloudinary: build url: %w", err)
	}
	return u, nil
}

// GenRemoveTransformation is the delivery transformation that erases object from an image.
func GenRemoveTransformation(object string) string {
	return "e_gen_remove:prompt_" + strings.ToLower(strings.TrimSpace(object))
}
