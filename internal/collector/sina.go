package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

var sinaLine = regexp.MustCompile(`hq_str_([a-z]{2}\d{6})="([^",]*)`)

// SinaNameResolver looks up current display names from the Sina quote API.
// The feed is GBK encoded and batched; a failed batch is skipped rather
// than failing the lookup.
type SinaNameResolver struct {
	Client    *http.Client
	URL       string
	BatchSize int
}

func NewSinaNameResolver() *SinaNameResolver {
	return &SinaNameResolver{
		Client:    &http.Client{Timeout: 10 * time.Second},
		URL:       "https://hq.sinajs.cn/list=",
		BatchSize: 100,
	}
}

// LatestNames returns instrument id -> current name for the ids it could
// resolve. Unresolvable ids are simply absent from the map.
func (r *SinaNameResolver) LatestNames(ctx context.Context, ids []string) map[string]string {
	names := make(map[string]string, len(ids))
	quoted := make([]string, 0, len(ids))
	for _, id := range ids {
		prefix := "sz"
		if strings.HasPrefix(id, "6") {
			prefix = "sh"
		}
		quoted = append(quoted, prefix+id)
	}
	for start := 0; start < len(quoted); start += r.BatchSize {
		end := start + r.BatchSize
		if end > len(quoted) {
			end = len(quoted)
		}
		payload, err := r.fetchBatch(ctx, quoted[start:end])
		if err != nil {
			continue
		}
		parseSinaPayload(payload, names)
	}
	return names
}

func (r *SinaNameResolver) fetchBatch(ctx context.Context, batch []string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", r.URL+strings.Join(batch, ","), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Referer", "http://finance.sina.com.cn")

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sina: status %d", resp.StatusCode)
	}

	decoded, err := io.ReadAll(transform.NewReader(resp.Body, simplifiedchinese.GBK.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("sina decode: %w", err)
	}
	return string(decoded), nil
}

// parseSinaPayload extracts the name field from each quote line into names,
// keyed by the bare 6-digit code.
func parseSinaPayload(payload string, names map[string]string) {
	for _, m := range sinaLine.FindAllStringSubmatch(payload, -1) {
		code, name := m[1][2:], m[2]
		if name != "" {
			names[code] = name
		}
	}
}
