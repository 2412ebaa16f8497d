package security

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// UploadsPathPrefix はプロキシ対象とするWordPressメディアのパス。
const UploadsPathPrefix = "/wp-content/uploads/"

// 画像プロキシの検証・取得エラー。
var (
	ErrImageURLRejected = errors.New("image URL rejected")
	ErrImageTooLarge    = errors.New("image exceeds size limit")
	ErrNotAnImage       = errors.New("upstream response is not an image")
)

// allowedSchemes は画像取得で許可されるURLスキーム。
var allowedSchemes = []string{"http", "https"}

// blockedNetworks はホストにIPアドレスが直接書かれた場合に拒否するネットワーク範囲。
// 名前解決後の検証はsafeurlのDialerが行う。
var blockedNetworks []net.IPNet

func init() {
	cidrs := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		// クラウドメタデータIP (169.254.169.254) を含む
		"169.254.0.0/16",
		"0.0.0.0/8",
		"::1/128",
		"fe80::/10",
		"fc00::/7",
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR in blockedNetworks: %s: %v", cidr, err))
		}
		blockedNetworks = append(blockedNetworks, *network)
	}
}

// ImageGuard はCMSにアップロードされた画像だけを取得するプロキシ用のガード。
// 画像URLはCMSと同一のスキーム・ホストで、かつ UploadsPathPrefix 配下でなければならない。
type ImageGuard struct {
	scheme  string
	host    string
	client  *http.Client
	maxSize int64
}

// ImageGuardOption はImageGuardの設定オプション。
type ImageGuardOption func(*ImageGuard)

// WithImageHTTPClient は画像取得に使うHTTPクライアントを差し替える。
func WithImageHTTPClient(c *http.Client) ImageGuardOption {
	return func(g *ImageGuard) {
		g.client = c
	}
}

// NewImageGuard はCMSのエンドポイントURLからオリジンを取り出してImageGuardを生成する。
// 既定のHTTPクライアントはsafeurlでプライベートIP等への接続をブロックし、ポートを80/443に限定する。
func NewImageGuard(cmsEndpoint string, timeout time.Duration, maxSize int64, opts ...ImageGuardOption) (*ImageGuard, error) {
	u, err := url.Parse(cmsEndpoint)
	if err != nil || u.Host == "" || !isAllowedScheme(u.Scheme) {
		return nil, fmt.Errorf("CMSエンドポイントが不正です: %q", cmsEndpoint)
	}

	g := &ImageGuard{
		scheme:  strings.ToLower(u.Scheme),
		host:    strings.ToLower(u.Host),
		client:  NewSafeClient(timeout),
		maxSize: maxSize,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// NewSafeClient はSSRF防止機能付きのHTTPクライアントを生成する。
// safeurlはnet.DialerのControlフックで名前解決後のIPアドレスを検証するため、
// DNS再バインディングにも対応する。
func NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(config).Client
}

// Validate は画像URLを検証し、正規化したURLを返す。
// 拒否した場合は ErrImageURLRejected をラップしたエラーを返す。
func (g *ImageGuard) Validate(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("%w: empty URL", ErrImageURLRejected)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid URL", ErrImageURLRejected)
	}
	if !isAllowedScheme(u.Scheme) {
		return nil, fmt.Errorf("%w: disallowed scheme %q", ErrImageURLRejected, u.Scheme)
	}
	if u.User != nil {
		return nil, fmt.Errorf("%w: credentials in URL", ErrImageURLRejected)
	}

	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: empty host", ErrImageURLRejected)
	}
	if ip := net.ParseIP(host); ip != nil && isBlockedIP(ip) {
		return nil, fmt.Errorf("%w: blocked IP address %s", ErrImageURLRejected, ip)
	}
	if strings.EqualFold(host, "localhost") {
		return nil, fmt.Errorf("%w: blocked host %s", ErrImageURLRejected, host)
	}

	if strings.ToLower(u.Scheme) != g.scheme || strings.ToLower(u.Host) != g.host {
		return nil, fmt.Errorf("%w: not hosted by the CMS", ErrImageURLRejected)
	}

	cleaned := path.Clean(u.Path)
	if !strings.HasPrefix(cleaned+"/", UploadsPathPrefix) || cleaned+"/" == UploadsPathPrefix {
		return nil, fmt.Errorf("%w: outside the uploads directory", ErrImageURLRejected)
	}

	return &url.URL{
		Scheme:   g.scheme,
		Host:     g.host,
		Path:     cleaned,
		RawQuery: u.RawQuery,
	}, nil
}

// Image はプロキシで取得した画像。
type Image struct {
	Body        []byte
	ContentType string
}

// Fetch は検証済みの画像URLから画像を取得する。
// Content-Typeが image/* でない場合は ErrNotAnImage、サイズ上限を超えた場合は ErrImageTooLarge を返す。
func (g *ImageGuard) Fetch(ctx context.Context, u *url.URL) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの生成に失敗しました: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("画像の取得に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("画像の取得に失敗しました: status %d", resp.StatusCode)
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return nil, ErrNotAnImage
	}
	if g.maxSize > 0 && resp.ContentLength > g.maxSize {
		return nil, ErrImageTooLarge
	}

	reader := io.Reader(resp.Body)
	if g.maxSize > 0 {
		reader = io.LimitReader(resp.Body, g.maxSize+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("画像の読み込みに失敗しました: %w", err)
	}
	if g.maxSize > 0 && int64(len(body)) > g.maxSize {
		return nil, ErrImageTooLarge
	}

	return &Image{Body: body, ContentType: mediaType}, nil
}

func isAllowedScheme(scheme string) bool {
	for _, allowed := range allowedSchemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}

func isBlockedIP(ip net.IP) bool {
	for _, network := range blockedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
