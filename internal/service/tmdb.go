package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/user/moviehub/internal/config"
	"github.com/user/moviehub/internal/model"
	"github.com/user/moviehub/internal/utils"
)

// 图片尺寸
const (
	posterSize   = "w500"
	backdropSize = "w1280"
	profileSize  = "w185"
)

// errTMDBNotConfigured 未配置 TMDB 凭据
var errTMDBNotConfigured = errors.New("TMDB 未配置")

type tmdbMovie struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path"`
	ReleaseDate   string  `json:"release_date"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count"`
	GenreIDs      []int   `json:"genre_ids"`
}

type tmdbPage struct {
	Page       int         `json:"page"`
	Results    []tmdbMovie `json:"results"`
	TotalPages int         `json:"total_pages"`
}

type tmdbCast struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

type tmdbCrew struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

type tmdbVideo struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

type tmdbDetails struct {
	tmdbMovie
	IMDbID  string        `json:"imdb_id"`
	Tagline string        `json:"tagline"`
	Runtime int           `json:"runtime"`
	Genres  []model.Genre `json:"genres"`
	Credits struct {
		Cast []tmdbCast `json:"cast"`
		Crew []tmdbCrew `json:"crew"`
	} `json:"credits"`
	Videos struct {
		Results []tmdbVideo `json:"results"`
	} `json:"videos"`
}

type tmdbFindResponse struct {
	MovieResults []struct {
		ID int `json:"id"`
	} `json:"movie_results"`
}

type tmdbGenreList struct {
	Genres []model.Genre `json:"genres"`
}

// TMDBClient TMDB v3 接口客户端，优先使用 v4 Bearer Token，其次 api_key
type TMDBClient struct {
	http         *utils.HTTPClient
	baseURL      string
	imageBaseURL string
	token        string
	apiKey       string
	language     string
}

// NewTMDBClient 创建 TMDB 客户端
func NewTMDBClient(cfg *config.Config, httpClient *utils.HTTPClient) *TMDBClient {
	return &TMDBClient{
		http:         httpClient,
		baseURL:      strings.TrimRight(cfg.TMDBBaseURL, "/"),
		imageBaseURL: strings.TrimRight(cfg.TMDBImageBaseURL, "/"),
		token:        cfg.TMDBToken,
		apiKey:       cfg.TMDBAPIKey,
		language:     cfg.TMDBLanguage,
	}
}

// Enabled 是否配置了凭据
func (c *TMDBClient) Enabled() bool {
	return c.token != "" || c.apiKey != ""
}

func (c *TMDBClient) get(ctx context.Context, path string, query url.Values, target interface{}) error {
	if !c.Enabled() {
		return errTMDBNotConfigured
	}
	if query == nil {
		query = url.Values{}
	}
	if c.language != "" {
		query.Set("language", c.language)
	}

	headers := map[string]string{}
	if c.token != "" {
		headers["Authorization"] = "Bearer " + c.token
	} else {
		query.Set("api_key", c.apiKey)
	}

	return c.http.GetJSON(ctx, c.baseURL+path+"?"+query.Encode(), headers, target)
}

func (c *TMDBClient) list(ctx context.Context, path string, query url.Values) ([]tmdbMovie, error) {
	var page tmdbPage
	if err := c.get(ctx, path, query, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// Search 按关键词搜索电影
func (c *TMDBClient) Search(ctx context.Context, query string, page int) ([]tmdbMovie, error) {
	return c.list(ctx, "/search/movie", url.Values{
		"query":         {query},
		"page":          {strconv.Itoa(page)},
		"include_adult": {"false"},
	})
}

// Popular 热门电影
func (c *TMDBClient) Popular(ctx context.Context, page int) ([]tmdbMovie, error) {
	return c.list(ctx, "/movie/popular", url.Values{"page": {strconv.Itoa(page)}})
}

// Trending 本周趋势
func (c *TMDBClient) Trending(ctx context.Context) ([]tmdbMovie, error) {
	return c.list(ctx, "/trending/movie/week", nil)
}

// Discover 按类型发现电影
func (c *TMDBClient) Discover(ctx context.Context, genreID, page int) ([]tmdbMovie, error) {
	return c.list(ctx, "/discover/movie", url.Values{
		"with_genres": {strconv.Itoa(genreID)},
		"page":        {strconv.Itoa(page)},
		"sort_by":     {"popularity.desc"},
	})
}

// Details 电影详情，附带演职员和视频
func (c *TMDBClient) Details(ctx context.Context, id int) (*tmdbDetails, error) {
	var details tmdbDetails
	err := c.get(ctx, fmt.Sprintf("/movie/%d", id), url.Values{"append_to_response": {"credits,videos"}}, &details)
	if err != nil {
		return nil, err
	}
	return &details, nil
}

// FindByIMDbID 通过 IMDb ID 查找 TMDB ID，找不到返回 0
func (c *TMDBClient) FindByIMDbID(ctx context.Context, imdbID string) (int, error) {
	var result tmdbFindResponse
	err := c.get(ctx, "/find/"+url.PathEscape(imdbID), url.Values{"external_source": {"imdb_id"}}, &result)
	if err != nil {
		return 0, err
	}
	if len(result.MovieResults) == 0 {
		return 0, nil
	}
	return result.MovieResults[0].ID, nil
}

// Genres 电影类型列表
func (c *TMDBClient) Genres(ctx context.Context) ([]model.Genre, error) {
	var result tmdbGenreList
	if err := c.get(ctx, "/genre/movie/list", nil, &result); err != nil {
		return nil, err
	}
	if len(result.Genres) == 0 {
		return nil, errors.New("TMDB 返回空的类型列表")
	}
	return result.Genres, nil
}

// ImageURL 相对路径转为完整图片地址，空路径返回 nil
func (c *TMDBClient) ImageURL(size, path string) *string {
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return &path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	full := c.imageBaseURL + "/" + size + path
	return &full
}

// isNotFound 上游返回 404
func isNotFound(err error) bool {
	var statusErr *utils.HTTPStatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}
