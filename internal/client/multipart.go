package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
)

// File is one file part of a multipart form
type File struct {
	Field       string
	Filename    string
	ContentType string
	Content     io.Reader
}

// Form is a multipart/form-data body
type Form struct {
	Fields map[string]string
	Files  []File
}

// encode writes the form and returns the body with its boundary content type
func (f Form) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	keys := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, f.Fields[k]); err != nil {
			return nil, "", err
		}
	}

	for _, file := range f.Files {
		if file.Field == "" || file.Content == nil {
			return nil, "", fmt.Errorf("file part needs a field name and content")
		}

		var part io.Writer
		var err error
		if file.ContentType != "" {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Filename))
			h.Set("Content-Type", file.ContentType)
			part, err = w.CreatePart(h)
		} else {
			part, err = w.CreateFormFile(file.Field, file.Filename)
		}
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", file.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// Upload posts form as multipart/form-data to path and decodes the answer into out
func (c *Client) Upload(ctx context.Context, path string, form Form, out any) error {
	body, contentType, err := form.encode()
	if err != nil {
		return c.fail(ctx, &Error{Kind: KindConfig, Method: http.MethodPost, Path: path, Err: err})
	}

	header := http.Header{}
	header.Set("Content-Type", contentType)
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body, Header: header}, out)
}
