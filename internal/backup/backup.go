package backup

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	cos "github.com/tencentyun/cos-go-sdk-v5"
)

var ErrNotConfigured = errors.New("backup storage is not configured")

type Config struct {
	SecretID     string
	SecretKey    string
	Region       string
	BucketName   string
	PublicDomain string
}

// Uploader pushes journal snapshots to a Tencent COS bucket. All methods
// are safe on a zero-value receiver; they report ErrNotConfigured.
type Uploader struct {
	cfg Config
}

func NewUploader(cfg Config) *Uploader {
	if strings.TrimSpace(cfg.Region) == "" {
		cfg.Region = "ap-hongkong"
	}
	return &Uploader{cfg: cfg}
}

func (u *Uploader) Configured() bool {
	if u == nil {
		return false
	}
	return strings.TrimSpace(u.cfg.SecretID) != "" &&
		strings.TrimSpace(u.cfg.SecretKey) != "" &&
		strings.TrimSpace(u.cfg.BucketName) != ""
}

// UploadSnapshot stores one JSON snapshot and returns the object URL.
func (u *Uploader) UploadSnapshot(ctx context.Context, snapshot []byte) (string, error) {
	if !u.Configured() {
		return "", ErrNotConfigured
	}
	if len(snapshot) == 0 {
		return "", errors.New("snapshot is empty")
	}

	bucket := strings.TrimSpace(u.cfg.BucketName)
	bucketURL, err := url.Parse(fmt.Sprintf("https://%s.cos.%s.myqcloud.com", bucket, u.cfg.Region))
	if err != nil {
		return "", err
	}
	client := cos.NewClient(&cos.BaseURL{BucketURL: bucketURL}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  strings.TrimSpace(u.cfg.SecretID),
			SecretKey: strings.TrimSpace(u.cfg.SecretKey),
		},
	})

	key := buildSnapshotKey(time.Now())
	if _, err := client.Object.Put(ctx, key, bytes.NewReader(snapshot), nil); err != nil {
		return "", err
	}

	publicDomain := strings.TrimRight(strings.TrimSpace(u.cfg.PublicDomain), "/")
	if publicDomain == "" {
		return bucketURL.String() + "/" + key, nil
	}
	return publicDomain + "/" + key, nil
}

func buildSnapshotKey(now time.Time) string {
	return fmt.Sprintf("backups/%s_%s.json", now.UTC().Format("20060102T150405"), randomHex(4))
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "0000"
	}
	return hex.EncodeToString(buf)
}
