package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"recipe-search/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HeaderDeduplicated 重播回應時附加的標頭
const HeaderDeduplicated = "X-Deduplicated"

// dedupEntry 指紋對應的回應，done 為 false 表示仍在處理中
type dedupEntry struct {
	at          time.Time
	done        bool
	status      int
	contentType string
	body        []byte
}

// Deduplicator 短時間內相同 POST 請求去重，重複請求直接重播第一次的成功回應
type Deduplicator struct {
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	requests map[string]*dedupEntry
}

// NewDeduplicator 創建去重器，window 不大於 0 時使用 1 秒
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = time.Second
	}
	return &Deduplicator{
		window:   window,
		now:      time.Now,
		requests: make(map[string]*dedupEntry),
	}
}

// lookup 回傳視窗內已完成的回應；沒有時登記為處理中
func (d *Deduplicator) lookup(fingerprint string) (*dedupEntry, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if e, ok := d.requests[fingerprint]; ok && now.Sub(e.at) <= d.window {
		if e.done {
			return e, true
		}
		// 相同請求仍在處理中，照常處理
		return nil, false
	}
	d.requests[fingerprint] = &dedupEntry{at: now}

	// 順便清掉過舊的指紋
	for k, e := range d.requests {
		if now.Sub(e.at) > 10*d.window {
			delete(d.requests, k)
		}
	}
	return nil, false
}

// store 記錄成功回應，失敗的回應不重播
func (d *Deduplicator) store(fingerprint string, status int, contentType string, body []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		delete(d.requests, fingerprint)
		return
	}
	d.requests[fingerprint] = &dedupEntry{
		at:          d.now(),
		done:        true,
		status:      status,
		contentType: contentType,
		body:        body,
	}
}

// bodyRecorder 同時寫出並保留回應內容
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Deduplication 請求去重中間件
func Deduplication(window time.Duration) gin.HandlerFunc {
	d := NewDeduplicator(window)
	return d.Handler()
}

// Handler 回傳 gin 中間件
func (d *Deduplicator) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 只處理 POST 請求
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		// 計算請求體哈希
		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogWarn("Failed to read request body", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrorResponse{
					Code:    common.ErrInvalidRequest.Code,
					Message: common.ErrInvalidRequest.Message,
				})
				return
			}

			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		// 生成請求指紋
		fingerprint := c.ClientIP() + ":" + c.Request.URL.Path + ":" + bodyHash

		if entry, ok := d.lookup(fingerprint); ok {
			common.LogDebug("重播重複請求的回應",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.Header(HeaderDeduplicated, "true")
			c.Data(entry.status, entry.contentType, entry.body)
			c.Abort()
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		d.store(fingerprint, recorder.Status(), recorder.Header().Get("Content-Type"), recorder.body.Bytes())
	}
}
