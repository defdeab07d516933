package binder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"reflect"
	"strings"
)

// DefaultMaxMemory bounds multipart parsing.
const DefaultMaxMemory = 10 << 20

// FileUpload is an uploaded file held in memory.
type FileUpload struct {
	Filename string
	Size     int64
	Header   textproto.MIMEHeader
	Content  []byte
}

// ContentType returns the declared media type, or one derived from the file
// extension when the part has none.
func (f *FileUpload) ContentType() string {
	if ct := f.Header.Get("Content-Type"); ct != "" {
		if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
			return mediaType
		}
	}
	return mime.TypeByExtension(filepath.Ext(f.Filename))
}

// DetectedContentType sniffs the first 512 bytes of the content.
func (f *FileUpload) DetectedContentType() string {
	return http.DetectContentType(f.Content)
}

// Reader returns a reader over the file content.
func (f *FileUpload) Reader() io.Reader { return bytes.NewReader(f.Content) }

var fileUploadType = reflect.TypeOf(FileUpload{})

// Multipart binds multipart/form-data requests. Fields tagged `form` must be
// strings; fields tagged `file` must be *FileUpload. Only the first value of
// repeated keys is used.
func Multipart(maxBytes int64) Func {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxMemory
	}
	return func(r *http.Request, v any) error {
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "multipart/form-data" {
			return ErrNotApplicable
		}

		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return ErrInvalidTarget
		}

		r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return fmt.Errorf("%w: max %d bytes", ErrBodyTooLarge, maxBytes)
			}
			return errors.Join(ErrFailedToParseForm, err)
		}

		rv = rv.Elem()
		rt := rv.Type()
		for i := range rt.NumField() {
			sf := rt.Field(i)
			field := rv.Field(i)
			if !field.CanSet() {
				continue
			}

			if name := sf.Tag.Get("form"); name != "" && name != "-" {
				if sf.Type.Kind() != reflect.String {
					return fmt.Errorf("%w: field %s must be a string", ErrInvalidTarget, sf.Name)
				}
				if vals := r.MultipartForm.Value[name]; len(vals) > 0 {
					field.SetString(strings.TrimSpace(vals[0]))
				}
			}

			if name := sf.Tag.Get("file"); name != "" && name != "-" {
				if sf.Type != reflect.PointerTo(fileUploadType) {
					return fmt.Errorf("%w: field %s must be *binder.FileUpload", ErrInvalidTarget, sf.Name)
				}
				headers := r.MultipartForm.File[name]
				if len(headers) == 0 {
					continue
				}
				upload, err := readFileHeader(headers[0])
				if err != nil {
					return errors.Join(ErrFailedToParseForm, err)
				}
				field.Set(reflect.ValueOf(upload))
			}
		}
		return nil
	}
}

func readFileHeader(fh *multipart.FileHeader) (*FileUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return &FileUpload{
		Filename: filepath.Base(fh.Filename),
		Size:     int64(len(content)),
		Header:   fh.Header,
		Content:  content,
	}, nil
}
