package storage

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	domain "filesend-bot/internal/domain/storage"
)

// Yandex Disk error codes that mean the target is already there.
const (
	yadiskDirExists      = "DiskPathPointsToExistentDirectoryError"
	yadiskResourceExists = "DiskResourceAlreadyExistsError"
)

type yadiskError struct {
	Error       string `json:"error"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

type yadiskLink struct {
	Href   string `json:"href"`
	Method string `json:"method"`
}

// YandexDiskStorage talks to the Yandex Disk REST API.
type YandexDiskStorage struct {
	client *resty.Client
	upload *resty.Client
	log    zerolog.Logger
}

// NewYandexDiskStorage builds a client authorised with an OAuth token.
func NewYandexDiskStorage(baseURL, token string, timeout time.Duration, log zerolog.Logger) *YandexDiskStorage {
	baseURL = strings.TrimRight(baseURL, "/")
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Authorization", "OAuth "+token).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	// upload hrefs are pre-signed and must not carry the token
	upload := resty.New().SetTimeout(timeout)

	return &YandexDiskStorage{
		client: client,
		upload: upload,
		log:    log.With().Str("component", "yadisk-storage").Logger(),
	}
}

func (y *YandexDiskStorage) Name() string {
	return "yadisk"
}

func (y *YandexDiskStorage) Exists(ctx context.Context, remotePath string) (bool, error) {
	resp, err := y.client.R().
		SetContext(ctx).
		SetQueryParam("path", domain.Clean(remotePath)).
		SetQueryParam("fields", "path,type").
		SetError(&yadiskError{}).
		Get("/resources")
	if err != nil {
		return false, fmt.Errorf("yadisk stat request failed: %w", err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}
	return false, apiError("stat", resp)
}

func (y *YandexDiskStorage) Mkdir(ctx context.Context, remotePath string) error {
	resp, err := y.client.R().
		SetContext(ctx).
		SetQueryParam("path", domain.Clean(remotePath)).
		SetError(&yadiskError{}).
		Put("/resources")
	if err != nil {
		return fmt.Errorf("yadisk mkdir request failed: %w", err)
	}
	if resp.StatusCode() == http.StatusCreated {
		y.log.Debug().Str("path", remotePath).Msg("folder created")
		return nil
	}
	if resp.StatusCode() == http.StatusConflict && errorCode(resp) == yadiskDirExists {
		return domain.ErrAlreadyExists
	}
	return apiError("mkdir", resp)
}

// Upload requests an upload link and streams the file to it.
func (y *YandexDiskStorage) Upload(ctx context.Context, localPath, remotePath string, overwrite bool) error {
	var link yadiskLink
	resp, err := y.client.R().
		SetContext(ctx).
		SetQueryParam("path", domain.Clean(remotePath)).
		SetQueryParam("overwrite", strconv.FormatBool(overwrite)).
		SetResult(&link).
		SetError(&yadiskError{}).
		Get("/resources/upload")
	if err != nil {
		return fmt.Errorf("yadisk upload link request failed: %w", err)
	}
	if resp.StatusCode() == http.StatusConflict && errorCode(resp) == yadiskResourceExists {
		return domain.ErrAlreadyExists
	}
	if resp.IsError() {
		return apiError("upload link", resp)
	}
	if link.Href == "" {
		return fmt.Errorf("yadisk upload link response has no href")
	}

	mtype, err := mimetype.DetectFile(localPath)
	if err != nil {
		return fmt.Errorf("detect content type: %w", err)
	}
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open upload source: %w", err)
	}
	defer file.Close()

	method := strings.ToUpper(link.Method)
	if method == "" {
		method = http.MethodPut
	}
	put, err := y.upload.R().
		SetContext(ctx).
		SetHeader("Content-Type", mtype.String()).
		SetBody(file).
		Execute(method, link.Href)
	if err != nil {
		return fmt.Errorf("yadisk upload failed: %w", err)
	}
	if put.IsError() {
		return fmt.Errorf("yadisk upload error (%d): %s", put.StatusCode(), put.String())
	}

	y.log.Debug().
		Str("path", remotePath).
		Str("content_type", mtype.String()).
		Bool("overwrite", overwrite).
		Msg("file uploaded")
	return nil
}

func errorCode(resp *resty.Response) string {
	if e, ok := resp.Error().(*yadiskError); ok && e != nil {
		return e.Error
	}
	return ""
}

func apiError(op string, resp *resty.Response) error {
	if e, ok := resp.Error().(*yadiskError); ok && e != nil && e.Error != "" {
		return fmt.Errorf("yadisk %s error (%d): %s: %s", op, resp.StatusCode(), e.Error, e.Description)
	}
	return fmt.Errorf("yadisk %s error (%d): %s", op, resp.StatusCode(), resp.String())
}
