package service

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/user/moviehub/internal/config"
	"github.com/user/moviehub/internal/utils"
)

// omdbNA OMDb 用 "N/A" 表示缺失字段
const omdbNA = "N/A"

type omdbSearchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

type omdbSearchResponse struct {
	Search   []omdbSearchItem `json:"Search"`
	Response string           `json:"Response"`
	Error    string           `json:"Error"`
}

type omdbDetails struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Released   string `json:"Released"`
	Runtime    string `json:"Runtime"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	IMDbRating string `json:"imdbRating"`
	IMDbVotes  string `json:"imdbVotes"`
	IMDbID     string `json:"imdbID"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

// OMDbClient OMDb 接口客户端，作为搜索兜底和 IMDb ID 详情来源
type OMDbClient struct {
	http    *utils.HTTPClient
	baseURL string
	apiKey  string
}

// NewOMDbClient 创建 OMDb 客户端
func NewOMDbClient(cfg *config.Config, httpClient *utils.HTTPClient) *OMDbClient {
	return &OMDbClient{
		http:    httpClient,
		baseURL: cfg.OMDbBaseURL,
		apiKey:  cfg.OMDbAPIKey,
	}
}

// Enabled 是否配置了 API Key
func (c *OMDbClient) Enabled() bool {
	return c.apiKey != ""
}

func (c *OMDbClient) get(ctx context.Context, query url.Values, target interface{}) error {
	query.Set("apikey", c.apiKey)
	return c.http.GetJSON(ctx, c.baseURL+"?"+query.Encode(), nil, target)
}

// Search 按标题搜索，无结果时返回空切片
func (c *OMDbClient) Search(ctx context.Context, query string, page int) ([]omdbSearchItem, error) {
	var result omdbSearchResponse
	err := c.get(ctx, url.Values{
		"s":    {query},
		"type": {"movie"},
		"page": {strconv.Itoa(page)},
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.Response == "False" {
		if isOMDbNotFound(result.Error) {
			return []omdbSearchItem{}, nil
		}
		return nil, errors.New("OMDb: " + result.Error)
	}
	return result.Search, nil
}

// Details 通过 IMDb ID 获取详情
func (c *OMDbClient) Details(ctx context.Context, imdbID string) (*omdbDetails, error) {
	var result omdbDetails
	err := c.get(ctx, url.Values{"i": {imdbID}, "plot": {"full"}}, &result)
	if err != nil {
		return nil, err
	}
	if result.Response == "False" {
		if isOMDbNotFound(result.Error) {
			return nil, ErrMovieNotFound
		}
		return nil, errors.New("OMDb: " + result.Error)
	}
	return &result, nil
}

func isOMDbNotFound(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "not found") || strings.Contains(msg, "incorrect imdb id")
}

// omdbValue "N/A" 转为空字符串
func omdbValue(v string) string {
	v = strings.TrimSpace(v)
	if v == omdbNA {
		return ""
	}
	return v
}

// omdbImage 海报地址，缺失时返回 nil
func omdbImage(v string) *string {
	v = omdbValue(v)
	if v == "" {
		return nil
	}
	return &v
}

// omdbList "A, B, C" 拆分为切片
func omdbList(v string) []string {
	v = omdbValue(v)
	out := []string{}
	if v == "" {
		return out
	}
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
