package blob

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rajivgeraev/skillswap-api/internal/config"
)

func TestCloudinarySignUpload(t *testing.T) {
	store, err := NewCloudinaryStore(config.CloudinaryConfig{
		CloudName:    "demo",
		APIKey:       "key",
		APISecret:    "secret",
		UploadFolder: "avatars",
	})
	if err != nil {
		t.Fatalf("NewCloudinaryStore: %v", err)
	}
	store.now = func() time.Time { return time.Unix(1700000000, 0) }

	params, err := store.SignUpload("u1")
	if err != nil {
		t.Fatalf("SignUpload: %v", err)
	}

	if params["timestamp"] != "1700000000" {
		t.Errorf("timestamp = %q", params["timestamp"])
	}
	if params["signature"] != "f88eb2da8ae7ca1affb1cbc0e2952fe07c195b21" {
		t.Errorf("signature = %q", params["signature"])
	}
	if params["api_key"] != "key" || params["cloud_name"] != "demo" {
		t.Errorf("unexpected credentials in params: %v", params)
	}
	if _, ok := params["api_secret"]; ok {
		t.Error("secret must not be returned")
	}

	store.cfg.APISecret = ""
	if _, err := store.SignUpload("u1"); err == nil {
		t.Error("expected error without api secret")
	}
}

func TestMemoryStorePut(t *testing.T) {
	store := NewMemoryStore("http://files.test")

	url, err := store.Put(context.Background(), "avatars/u1.png", "image/png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "http://files.test/avatars/u1.png" {
		t.Errorf("url = %q", url)
	}

	data, contentType, ok := store.Get("avatars/u1.png")
	if !ok || string(data) != "png-bytes" || contentType != "image/png" {
		t.Errorf("Get = %q, %q, %v", data, contentType, ok)
	}
}

func TestNewNoneBackend(t *testing.T) {
	store, err := New(context.Background(), &config.Config{BlobBackend: "none"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if store != nil {
		t.Fatalf("expected nil store for none backend, got %T", store)
	}
}

func TestS3ObjectURL(t *testing.T) {
	s := &S3Store{bucketName: "photos", region: "eu-west-1"}
	got := s.objectURL("avatars/user 1.png")
	want := "https://photos.s3.eu-west-1.amazonaws.com/avatars/user%201.png"
	if got != want {
		t.Errorf("objectURL = %q, want %q", got, want)
	}
}
