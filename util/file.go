package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// maxImageBytes 读取单张图片的上限
const maxImageBytes = 64 << 20

// ReadImage 读取本地路径或 http(s) URL 指向的图片原始字节
func ReadImage(ctx context.Context, pathOrURL string) ([]byte, error) {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return DownloadImage(ctx, pathOrURL)
	}
	return OpenImage(pathOrURL)
}

// DownloadImage 下载图片
func DownloadImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status code %d", url, resp.StatusCode)
	}

	return readLimited(resp.Body)
}

// OpenImage 打开本地图片
func OpenImage(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	return readLimited(file)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}
	return data, nil
}
