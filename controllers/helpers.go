package controllers

import (
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/plumstudio/atelier/middleware"
	"github.com/plumstudio/atelier/services"
)

// Per-file upload limit. The multipart form as a whole is additionally capped
// by gin's MaxMultipartMemory.
const maxUploadSize = 20 * 1024 * 1024

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func totalPages(total int64, pageSize int) int {
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func isAdmin(ctx *gin.Context) bool {
	roleVal, exists := ctx.Get(middleware.ContextRoleKey)
	if !exists {
		return false
	}
	role, _ := roleVal.(string)
	return role == "admin"
}

// readUpload loads a multipart file fully into memory, enforcing the per-file
// size cap.
func readUpload(header *multipart.FileHeader) (*services.Upload, bool) {
	if header.Size > maxUploadSize {
		return nil, false
	}
	f, err := header.Open()
	if err != nil {
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadSize+1))
	if err != nil || int64(len(data)) > maxUploadSize {
		return nil, false
	}
	return &services.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true
}

// formFile returns the single file uploaded under the given field, or nil when
// the field is absent. The bool is false only on a read/size failure.
func formFile(form *multipart.Form, field string) (*services.Upload, bool) {
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, true
	}
	return readUpload(headers[0])
}

// collectTempImages gathers body-image files sent as content_images[TOKEN]
// multipart fields, pairing each file with the placeholder token embedded in
// the body text.
func collectTempImages(form *multipart.Form) ([]services.TempImage, bool) {
	var images []services.TempImage
	for field, headers := range form.File {
		if !strings.HasPrefix(field, "content_images[") || !strings.HasSuffix(field, "]") {
			continue
		}
		token := field[len("content_images[") : len(field)-1]
		if token == "" || len(headers) == 0 {
			continue
		}
		up, ok := readUpload(headers[0])
		if !ok {
			return nil, false
		}
		images = append(images, services.TempImage{Token: token, File: *up})
	}
	return images, true
}

// collectFiles gathers every file uploaded under a repeated field.
func collectFiles(form *multipart.Form, field string) ([]services.Upload, bool) {
	headers := form.File[field]
	uploads := make([]services.Upload, 0, len(headers))
	for _, h := range headers {
		up, ok := readUpload(h)
		if !ok {
			return nil, false
		}
		uploads = append(uploads, *up)
	}
	return uploads, true
}

func formValue(form *multipart.Form, field string) string {
	if vals := form.Value[field]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func formBool(form *multipart.Form, field string) bool {
	v := strings.ToLower(strings.TrimSpace(formValue(form, field)))
	return v == "true" || v == "1" || v == "on"
}
