package client

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient はAPI呼び出し用のHTTPクライアントを作成します。
//
// http.DefaultClientにはタイムアウトがないため、常にこちらを使用すること。
// プロキシは環境変数（HTTP_PROXYなど）に従います。
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
