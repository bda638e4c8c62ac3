package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/ai-studio/internal/creation"
)

type GenerateArticleReq struct {
	Prompt string `json:"prompt"`
	Length int    `json:"length"`
}

type GenerateBlogTitleReq struct {
	Prompt string `json:"prompt"`
}

type GenerateImageReq struct {
	Prompt  string `json:"prompt"`
	Publish bool   `json:"publish"`
}

// pipelineCtx keeps request values but drops client cancellation, so a creation that
// was produced is always stored and counted.
func pipelineCtx(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

// Every AI endpoint answers 200 with the result envelope; success is carried in the body.
func respond(c *gin.Context, res creation.Result) {
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GenerateArticle(c *gin.Context) {
	var req GenerateArticleReq
	// a malformed body leaves the prompt empty and fails validation
	_ = c.ShouldBindJSON(&req)
	respond(c, h.Creations.GenerateArticle(pipelineCtx(c), callerFrom(c), req.Prompt, req.Length))
}

func (h *Handler) GenerateBlogTitle(c *gin.Context) {
	var req GenerateBlogTitleReq
	_ = c.ShouldBindJSON(&req)
	respond(c, h.Creations.GenerateBlogTitle(pipelineCtx(c), callerFrom(c), req.Prompt))
}

func (h *Handler) GenerateImage(c *gin.Context) {
	var req GenerateImageReq
	_ = c.ShouldBindJSON(&req)
	respond(c, h.Creations.GenerateImage(pipelineCtx(c), callerFrom(c), req.Prompt, req.Publish))
}

func (h *Handler) RemoveImageBackground(c *gin.Context) {
	respond(c, h.Creations.RemoveBackground(pipelineCtx(c), callerFrom(c), formUpload(c, "image")))
}

func (h *Handler) RemoveImageObject(c *gin.Context) {
	respond(c, h.Creations.RemoveObject(pipelineCtx(c), callerFrom(c), formUpload(c, "image"), c.PostForm("object")))
}

func (h *Handler) ResumeReview(c *gin.Context) {
	respond(c, h.Creations.ReviewResume(pipelineCtx(c), callerFrom(c), formUpload(c, "resume")))
}

// formUpload returns nil when the field is absent so the service reports the missing
// file, and a TooLarge upload when the body hit the request cap.
func formUpload(c *gin.Context, field string) *creation.Upload {
	fh, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &creation.Upload{Filename: field, TooLarge: true}
		}
		return nil
	}
	return uploadFromHeader(fh)
}

func uploadFromHeader(fh *multipart.FileHeader) *creation.Upload {
	return &creation.Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open: func() (creation.File, error) {
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			return f, nil
		},
	}
}
