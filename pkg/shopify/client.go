package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	apiVersion = "2024-01"
	pageLimit  = 250
	// 游标翻页的页数上限，防止异常响应导致死循环
	maxPages = 50
)

// ==================== 错误定义 ====================

// StatusError 源侧返回非 2xx
// 调用方据此区分"软失败"（记录日志、跳过该阶段）与网络级硬失败
type StatusError struct {
	Resource   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("shopify %s 返回 %d: %s", e.Resource, e.StatusCode, e.Body)
}

// ==================== Client ====================

// Client Shopify Admin REST 客户端
// 凭证按调用传入：一个进程内的所有租户共享同一个底层连接池
type Client struct {
	http   *resty.Client
	scheme string
}

// NewClient 创建 Shopify 客户端
func NewClient() *Client {
	client := resty.New().
		SetTimeout(20 * time.Second).
		SetRetryCount(2).
		SetHeader("User-Agent", "Shopify-Dash-Go/1.0")

	return &Client{
		http:   client,
		scheme: "https",
	}
}

// SetScheme 覆盖协议（测试环境使用 http 指向本地假服务）
func (c *Client) SetScheme(scheme string) {
	c.scheme = scheme
}

func (c *Client) resourceURL(domain, resource, query string) string {
	u := fmt.Sprintf("%s://%s/admin/api/%s/%s.json", c.scheme, domain, apiVersion, resource)
	if query != "" {
		u += "?" + query
	}
	return u
}

// ==================== 列表拉取（游标翻页） ====================

// ListCustomers 拉取全部客户
func (c *Client) ListCustomers(ctx context.Context, domain, token string) ([]CustomerPayload, error) {
	var out []CustomerPayload
	err := c.fetchPages(ctx, domain, token, "customers", nil, func(body []byte) error {
		var page struct {
			Customers []CustomerPayload `json:"customers"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		out = append(out, page.Customers...)
		return nil
	})
	return out, err
}

// ListProducts 拉取全部商品
func (c *Client) ListProducts(ctx context.Context, domain, token string) ([]ProductPayload, error) {
	var out []ProductPayload
	err := c.fetchPages(ctx, domain, token, "products", nil, func(body []byte) error {
		var page struct {
			Products []ProductPayload `json:"products"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		out = append(out, page.Products...)
		return nil
	})
	return out, err
}

// ListOrders 拉取全部订单（含订单项），任意状态
func (c *Client) ListOrders(ctx context.Context, domain, token string) ([]OrderPayload, error) {
	params := url.Values{}
	params.Set("status", "any")

	var out []OrderPayload
	err := c.fetchPages(ctx, domain, token, "orders", params, func(body []byte) error {
		var page struct {
			Orders []OrderPayload `json:"orders"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		out = append(out, page.Orders...)
		return nil
	})
	return out, err
}

// fetchPages 沿 Link 头的 rel="next" 游标拉取所有分页
// 注意：带 page_info 的请求只允许携带 limit，其余过滤参数必须丢弃
func (c *Client) fetchPages(ctx context.Context, domain, token, resource string, params url.Values, decode func([]byte) error) error {
	pageInfo := ""

	for page := 0; page < maxPages; page++ {
		q := url.Values{}
		if pageInfo == "" {
			for k, v := range params {
				q[k] = v
			}
		} else {
			q.Set("page_info", pageInfo)
		}
		q.Set("limit", fmt.Sprintf("%d", pageLimit))

		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("X-Shopify-Access-Token", token).
			Get(c.resourceURL(domain, resource, q.Encode()))
		if err != nil {
			return fmt.Errorf("请求 %s 失败: %w", resource, err)
		}

		if !resp.IsSuccess() {
			return &StatusError{
				Resource:   resource,
				StatusCode: resp.StatusCode(),
				Body:       truncate(resp.String(), 200),
			}
		}

		if err := decode(resp.Body()); err != nil {
			return fmt.Errorf("解析 %s 响应失败: %w", resource, err)
		}

		pageInfo = nextPageInfo(resp.Header().Get("Link"))
		if pageInfo == "" {
			return nil
		}
	}

	log.Printf("[Shopify] %s 翻页达到上限 %d 页，提前结束", resource, maxPages)
	return nil
}

var nextLinkRe = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// nextPageInfo 从 Link 响应头提取下一页游标
func nextPageInfo(linkHeader string) string {
	if linkHeader == "" {
		return ""
	}
	m := nextLinkRe.FindStringSubmatch(linkHeader)
	if m == nil {
		return ""
	}
	u, err := url.Parse(m[1])
	if err != nil {
		return ""
	}
	return u.Query().Get("page_info")
}

// ==================== 凭证校验 ====================

// TestConnection 校验域名与访问令牌是否可用
// 永不返回错误：任何网络/协议异常都视为不可用
func (c *Client) TestConnection(ctx context.Context, domain, token string) bool {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Shopify-Access-Token", token).
		Get(c.resourceURL(domain, "shop", ""))
	if err != nil {
		return false
	}
	return resp.IsSuccess()
}

// ==================== Webhook 订阅 ====================

// DefaultWebhookTopics 注册租户时订阅的事件主题
var DefaultWebhookTopics = []string{
	TopicOrdersCreate,
	TopicOrdersUpdated,
	TopicOrdersPaid,
	TopicOrdersCancelled,
	TopicCustomersCreate,
	TopicCustomersUpdate,
	TopicProductsCreate,
	TopicProductsUpdate,
}

// Subscribe 创建单个 webhook 订阅
func (c *Client) Subscribe(ctx context.Context, domain, token, topic, address string) error {
	body := map[string]interface{}{
		"webhook": map[string]interface{}{
			"topic":   topic,
			"address": address,
			"format":  "json",
		},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Shopify-Access-Token", token).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(c.resourceURL(domain, "webhooks", ""))
	if err != nil {
		return fmt.Errorf("订阅 %s 失败: %w", topic, err)
	}
	if !resp.IsSuccess() {
		return &StatusError{
			Resource:   "webhooks",
			StatusCode: resp.StatusCode(),
			Body:       truncate(resp.String(), 200),
		}
	}
	return nil
}

// RegisterWebhooks 注册全部默认主题
// 单个主题失败只计数不中断；主题之间加小延迟避免触发限流
func (c *Client) RegisterWebhooks(ctx context.Context, domain, token, appURL string) (successCount, errorCount int) {
	address := appURL + "/api/shopify/webhook"

	for _, topic := range DefaultWebhookTopics {
		if err := c.Subscribe(ctx, domain, token, topic, address); err != nil {
			log.Printf("[Shopify] 注册 webhook %s 失败: %v", topic, err)
			errorCount++
		} else {
			successCount++
		}
		time.Sleep(100 * time.Millisecond)
	}

	log.Printf("[Shopify] webhook 注册完成: 成功 %d, 失败 %d", successCount, errorCount)
	return successCount, errorCount
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
