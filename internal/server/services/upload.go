package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dmitrijs2005/stargram/internal/common"
)

// CaptionFieldName is the multipart field that carries the feed caption.
// Every other field is an image.
const CaptionFieldName = "caption"

// PartReader yields the parts of a multipart body in order. It returns
// io.EOF after the last part. *multipart.Reader satisfies it.
type PartReader interface {
	NextPart() (*multipart.Part, error)
}

var allowedImageTypes = []string{"image/png", "image/jpeg"}

// sniffImage returns the canonical content type of data when it is one of
// the accepted image formats.
func sniffImage(data []byte) (string, bool) {
	m := mimetype.Detect(data)
	for _, t := range allowedImageTypes {
		if m.Is(t) {
			return t, true
		}
	}
	return "", false
}

// readBounded reads r fully, failing with common.ErrorPayloadTooLarge when
// it holds more than limit bytes.
func readBounded(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, readError(err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: part exceeds %d bytes", common.ErrorPayloadTooLarge, limit)
	}
	return data, nil
}

// readCaption reads a caption part and requires valid UTF-8.
func readCaption(r io.Reader, limit int64) (string, error) {
	data, err := readBounded(r, limit)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: caption is not valid UTF-8", common.ErrorValidation)
	}
	return string(data), nil
}

// readError classifies a failure while reading the request body: hitting
// the body limit is a 413, anything else is broken framing.
func readError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: %v", common.ErrorPayloadTooLarge, err)
	}
	return fmt.Errorf("%w: %v", common.ErrorMalformedUpload, err)
}
