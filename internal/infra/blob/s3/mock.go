package s3

import (
	"bufio"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// NewMockForTests returns a Store backed by an in-process bucket. The SDK
// client is real; only the HTTP transport is faked.
func NewMockForTests() *Store {
	bucket := &fakeBucket{objects: map[string]fakeObject{}}
	cfg, _ := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
	)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: bucket}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://documents.test")
	})
	return &Store{client: client, bucket: "restaurant-documents", presign: s3.NewPresignClient(client)}
}

type fakeObject struct {
	body        []byte
	contentType string
	meta        map[string]string
	etag        string
	modified    time.Time
}

// fakeBucket answers the object calls the Store makes. A PUT always
// replaces; create-only semantics live in Store.Put.
type fakeBucket struct {
	mu      sync.Mutex
	objects map[string]fakeObject
}

type listResult struct {
	XMLName     xml.Name      `xml:"ListBucketResult"`
	IsTruncated bool          `xml:"IsTruncated"`
	Contents    []listContent `xml:"Contents"`
}

type listContent struct {
	Key          string `xml:"Key"`
	Size         int    `xml:"Size"`
	ETag         string `xml:"ETag"`
	LastModified string `xml:"LastModified"`
}

func (b *fakeBucket) RoundTrip(req *http.Request) (*http.Response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Path style: /<bucket>/<key>.
	_, key, _ := strings.Cut(strings.TrimPrefix(req.URL.Path, "/"), "/")
	switch {
	case req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2":
		return b.list(req.URL.Query().Get("prefix"))
	case req.Method == http.MethodPut:
		return b.put(key, req)
	case req.Method == http.MethodGet || req.Method == http.MethodHead:
		obj, ok := b.objects[key]
		if !ok {
			return reply(http.StatusNotFound, nil, nil), nil
		}
		h := http.Header{}
		h.Set("Content-Length", strconv.Itoa(len(obj.body)))
		h.Set("Content-Type", obj.contentType)
		h.Set("ETag", obj.etag)
		h.Set("Last-Modified", obj.modified.Format(http.TimeFormat))
		for k, v := range obj.meta {
			h.Set("X-Amz-Meta-"+k, v)
		}
		if req.Method == http.MethodHead {
			return reply(http.StatusOK, h, nil), nil
		}
		return reply(http.StatusOK, h, obj.body), nil
	case req.Method == http.MethodDelete:
		delete(b.objects, key)
		return reply(http.StatusNoContent, nil, nil), nil
	}
	return reply(http.StatusNotImplemented, nil, nil), nil
}

func (b *fakeBucket) put(key string, req *http.Request) (*http.Response, error) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	if strings.Contains(req.Header.Get("Content-Encoding"), "aws-chunked") || req.Header.Get("X-Amz-Decoded-Content-Length") != "" {
		if body, err = unchunk(body); err != nil {
			return reply(http.StatusBadRequest, nil, nil), nil
		}
	}
	meta := map[string]string{}
	for name, values := range req.Header {
		if k, ok := strings.CutPrefix(strings.ToLower(name), "x-amz-meta-"); ok && len(values) > 0 {
			meta[k] = values[0]
		}
	}
	obj := fakeObject{
		body:        body,
		contentType: req.Header.Get("Content-Type"),
		meta:        meta,
		etag:        `"` + uuid.NewString() + `"`,
		modified:    time.Now().UTC().Truncate(time.Second),
	}
	b.objects[key] = obj
	h := http.Header{}
	h.Set("ETag", obj.etag)
	return reply(http.StatusOK, h, nil), nil
}

func (b *fakeBucket) list(prefix string) (*http.Response, error) {
	out := listResult{}
	for key, obj := range b.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		out.Contents = append(out.Contents, listContent{
			Key:          key,
			Size:         len(obj.body),
			ETag:         obj.etag,
			LastModified: obj.modified.Format(time.RFC3339),
		})
	}
	sort.Slice(out.Contents, func(i, j int) bool { return out.Contents[i].Key < out.Contents[j].Key })
	body, err := xml.Marshal(out)
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set("Content-Type", "application/xml")
	return reply(http.StatusOK, h, body), nil
}

// unchunk strips aws-chunked framing: "<hex>[;ext]\r\n<data>\r\n" repeated
// until a zero-size chunk, followed by optional trailers.
func unchunk(raw []byte) ([]byte, error) {
	r := bufio.NewReader(bytes.NewReader(raw))
	var out bytes.Buffer
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("chunk header: %w", err)
		}
		size, _, _ := strings.Cut(strings.TrimSpace(line), ";")
		n, err := strconv.ParseInt(size, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("chunk size %q: %w", size, err)
		}
		if n == 0 {
			return out.Bytes(), nil
		}
		if _, err := io.CopyN(&out, r, n); err != nil {
			return nil, fmt.Errorf("chunk body: %w", err)
		}
		if _, err := r.Discard(2); err != nil {
			return nil, fmt.Errorf("chunk terminator: %w", err)
		}
	}
}

func reply(status int, h http.Header, body []byte) *http.Response {
	if h == nil {
		h = http.Header{}
	}
	return &http.Response{
		StatusCode:    status,
		Header:        h,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
	}
}
