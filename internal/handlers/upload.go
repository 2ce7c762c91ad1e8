package handlers

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
)

var errNoImagePart = errors.New("no image file part")

// imagePart streams the request body up to the first part named "image" that
// carries a filename parameter, so `filename=""` is still a file part while a
// plain form field is skipped. The part must be read before the body is closed.
func imagePart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, errNoImagePart
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, errNoImagePart
		}
		if err != nil {
			return nil, err
		}

		if part.FormName() == "image" && hasFilename(part) {
			return part, nil
		}
	}
}

func hasFilename(part *multipart.Part) bool {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return false
	}
	_, ok := params["filename"]
	return ok
}
