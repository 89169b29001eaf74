package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// maxErrorBody bounds how much of a raw failure body is echoed to the
	// admin, so an HTML error page cannot flood the item list.
	maxErrorBody = 100

	// bodyReadLimit caps how much of any response body is read at all.
	bodyReadLimit = 8 << 10
)

// Error messages for the classification layers that have no server-supplied
// text of their own.
var (
	errInvalidResponse = errors.New("invalid server response")
	errUploadFailed    = errors.New("upload failed")
)

// sizeLimitMarkers are the failure-body fragments that identify the server's
// request-body ceiling, which is independent of (and smaller than) the
// client-side pre-filter.
var sizeLimitMarkers = []string{"Request Entity Too Large", "413"}

// sizeLimitRemedy is shown when the endpoint rejects a direct upload for
// size; the remote-link method bypasses the request-body ceiling entirely.
const sizeLimitRemedy = "file is too large for direct upload; use the remote link method instead"

// HTTPTransport serializes one batch item into a multipart POST against the
// upload endpoint and classifies the response.
//
// Failures happen at three layers - network, HTTP (including the body-size
// ceiling), and application - and each needs a different remedy, so the
// classification is layered rather than a single status check.
type HTTPTransport struct {
	// Endpoint is the absolute URL of the upload endpoint.
	Endpoint string

	// Client is the HTTP client to use. A default with a generous timeout
	// is used when nil.
	Client *http.Client

	// Header entries are copied onto every request; the bulk-upload handler
	// uses this to forward the admin's session cookie.
	Header http.Header
}

// uploadResponse is the structured body the upload endpoint returns.
type uploadResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Submit implements Transport.
func (t *HTTPTransport) Submit(ctx context.Context, item Item) error {
	body, contentType, err := encodeItem(item)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	for k, vs := range t.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}

	resp, err := client.Do(req)
	if err != nil {
		// Network-layer failure (connectivity loss, timeout, DNS).
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			return errors.New(msg)
		}
		return errUploadFailed
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, bodyReadLimit))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := string(raw)
		for _, marker := range sizeLimitMarkers {
			if strings.Contains(text, marker) {
				return errors.New(sizeLimitRemedy)
			}
		}
		return fmt.Errorf("upload failed: %s", truncate(text, maxErrorBody))
	}

	var parsed uploadResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return errInvalidResponse
	}
	if !parsed.Success {
		if msg := strings.TrimSpace(parsed.Error); msg != "" {
			return errors.New(msg)
		}
		return errUploadFailed
	}
	return nil
}

// encodeItem renders the item as the multipart form the upload endpoint
// expects. File payloads are read from the spool; the whole request is
// buffered, which is fine under the 10 MiB item ceiling.
func encodeItem(item Item) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"contentType":   item.Kind,
		"subjectId":     item.SubjectID,
		"chapterId":     item.ChapterID,
		"title":         item.Title,
		"year":          item.Year,
		"fakeViews":     strconv.FormatInt(item.SeedViews, 10),
		"fakeDownloads": strconv.FormatInt(item.SeedDownloads, 10),
		"uploadMethod":  string(item.Method()),
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	switch src := item.Source.(type) {
	case FileSource:
		part, err := w.CreateFormFile("file", src.Name)
		if err != nil {
			return nil, "", err
		}
		f, err := os.Open(src.SpoolPath)
		if err != nil {
			return nil, "", fmt.Errorf("read spooled file: %w", err)
		}
		_, err = io.Copy(part, f)
		f.Close()
		if err != nil {
			return nil, "", fmt.Errorf("read spooled file: %w", err)
		}
	case LinkSource:
		if err := w.WriteField("remoteLink", src.URL); err != nil {
			return nil, "", err
		}
		if err := w.WriteField("fileName", src.FileName); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// truncate bounds s to max bytes, marking the cut. The cut never splits a
// UTF-8 rune.
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
