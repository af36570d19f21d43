package services

import (
	"fmt"
	"strings"

	"github.com/plumstudio/atelier/storage"
)

// TempImageToken is the placeholder prefix the editor embeds in body text
// before the referenced file has been uploaded.
const TempImageToken = "TEMP_IMAGE_"

// Upload is an in-memory file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// TempImage pairs a placeholder token found in the body with its file.
type TempImage struct {
	Token string
	File  Upload
}

// ReplaceTempImages uploads each pending body image to the resource's content
// folder and rewrites every occurrence of its token into the public URL.
// It returns the rewritten body and the uploaded object paths so the caller
// can compensate on a later failure. With no files the body passes through
// unchanged.
func ReplaceTempImages(store storage.Store, resourceID uint, body string, files []TempImage) (string, []string, error) {
	if len(files) == 0 {
		return body, nil, nil
	}
	uploaded := make([]string, 0, len(files))
	for _, img := range files {
		objectPath := storage.ContentImagePath(resourceID, img.File.Filename)
		url, err := store.Upload(objectPath, img.File.Data, img.File.ContentType)
		if err != nil {
			return body, uploaded, fmt.Errorf("upload body image %s: %w", img.Token, err)
		}
		uploaded = append(uploaded, objectPath)
		body = strings.ReplaceAll(body, TempImageToken+img.Token, url)
	}
	return body, uploaded, nil
}

// ExtractOwnedImagePaths returns the object paths of every body image the
// resource owns, i.e. every URL under "{resourceID}/content/" referenced by
// the text. Order follows first appearance.
func ExtractOwnedImagePaths(store storage.Store, resourceID uint, body string) []string {
	urlPrefix := store.PublicURL(fmt.Sprintf("%d/content/", resourceID))
	var paths []string
	seen := map[string]bool{}
	rest := body
	for {
		idx := strings.Index(rest, urlPrefix)
		if idx < 0 {
			break
		}
		rest = rest[idx+len(urlPrefix):]
		end := 0
		for end < len(rest) && isObjectNameChar(rest[end]) {
			end++
		}
		name := rest[:end]
		rest = rest[end:]
		if name == "" {
			continue
		}
		objectPath := fmt.Sprintf("%d/content/%s", resourceID, name)
		if !seen[objectPath] {
			seen[objectPath] = true
			paths = append(paths, objectPath)
		}
	}
	return paths
}

// DiffRemoved returns the paths present in old but absent from updated,
// preserving old's order. The caller still filters by ownership prefix
// before deleting anything.
func DiffRemoved(old, updated []string) []string {
	kept := map[string]bool{}
	for _, p := range updated {
		kept[p] = true
	}
	var removed []string
	for _, p := range old {
		if !kept[p] {
			removed = append(removed, p)
		}
	}
	return removed
}

func isObjectNameChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.':
		return true
	}
	return false
}
