package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/user/moviehub/internal/model"
	"github.com/user/moviehub/internal/utils"
	"golang.org/x/sync/singleflight"
)

const (
	genreCacheKey = "genres"
	maxCast       = 10
)

// fallbackGenres 上游类型接口失败时返回的固定列表
var fallbackGenres = []model.Genre{
	{ID: 28, Name: "Action"},
	{ID: 12, Name: "Adventure"},
	{ID: 16, Name: "Animation"},
	{ID: 35, Name: "Comedy"},
	{ID: 80, Name: "Crime"},
	{ID: 99, Name: "Documentary"},
	{ID: 18, Name: "Drama"},
	{ID: 14, Name: "Fantasy"},
	{ID: 27, Name: "Horror"},
	{ID: 10749, Name: "Romance"},
	{ID: 878, Name: "Science Fiction"},
	{ID: 53, Name: "Thriller"},
}

// FallbackGenres 返回兜底类型列表的副本
func FallbackGenres() []model.Genre {
	out := make([]model.Genre, len(fallbackGenres))
	copy(out, fallbackGenres)
	return out
}

// MovieGateway 上游电影数据网关
//
// 类型列表首次成功获取后常驻内存，不做失效处理。
// 列表和详情结果按 TTL 缓存在 LRU 中，ttl 为 0 时不缓存。
type MovieGateway struct {
	tmdb *TMDBClient
	omdb *OMDbClient

	genres      *cache.Cache
	genreGroup  singleflight.Group
	detailGroup singleflight.Group

	lists   *utils.SearchCache[[]model.MovieSummary]
	details *utils.SearchCache[*model.MovieDetail]
}

// NewMovieGateway 创建网关
func NewMovieGateway(tmdb *TMDBClient, omdb *OMDbClient, cacheSize int, cacheTTL time.Duration) *MovieGateway {
	g := &MovieGateway{
		tmdb:   tmdb,
		omdb:   omdb,
		genres: cache.New(cache.NoExpiration, 0),
	}
	if cacheTTL > 0 {
		g.lists = utils.NewSearchCache[[]model.MovieSummary](cacheSize, cacheTTL)
		g.details = utils.NewSearchCache[*model.MovieDetail](cacheSize, cacheTTL)
	}
	return g
}

// Search 搜索电影，TMDB 失败或无结果时尝试 OMDb，始终不返回错误
func (g *MovieGateway) Search(ctx context.Context, query string, page int) []model.MovieSummary {
	key := fmt.Sprintf("search:%d:%s", page, query)
	if movies, ok := g.cachedList(key); ok {
		return movies
	}

	var movies []model.MovieSummary
	results, err := g.tmdb.Search(ctx, query, page)
	if err != nil {
		log.Printf("[Gateway] TMDB 搜索失败 (query=%q): %v", query, err)
	} else {
		movies = g.fromTMDB(ctx, results)
	}

	if len(movies) == 0 && g.omdb.Enabled() {
		items, omdbErr := g.omdb.Search(ctx, query, page)
		if omdbErr != nil {
			log.Printf("[Gateway] OMDb 搜索失败 (query=%q): %v", query, omdbErr)
		} else {
			movies = fromOMDbSearch(items)
			err = nil
		}
	}

	if movies == nil {
		movies = []model.MovieSummary{}
	}
	if err == nil {
		g.storeList(key, movies)
	}
	return movies
}

// Popular 热门电影
func (g *MovieGateway) Popular(ctx context.Context, page int) []model.MovieSummary {
	return g.tmdbList(ctx, fmt.Sprintf("popular:%d", page), func() ([]tmdbMovie, error) {
		return g.tmdb.Popular(ctx, page)
	})
}

// Trending 本周趋势
func (g *MovieGateway) Trending(ctx context.Context) []model.MovieSummary {
	return g.tmdbList(ctx, "trending", func() ([]tmdbMovie, error) {
		return g.tmdb.Trending(ctx)
	})
}

// ByGenre 按类型浏览
func (g *MovieGateway) ByGenre(ctx context.Context, genreID, page int) []model.MovieSummary {
	return g.tmdbList(ctx, fmt.Sprintf("genre:%d:%d", genreID, page), func() ([]tmdbMovie, error) {
		return g.tmdb.Discover(ctx, genreID, page)
	})
}

func (g *MovieGateway) tmdbList(ctx context.Context, key string, fetch func() ([]tmdbMovie, error)) []model.MovieSummary {
	if movies, ok := g.cachedList(key); ok {
		return movies
	}

	results, err := fetch()
	if err != nil {
		log.Printf("[Gateway] TMDB 列表请求失败 (%s): %v", key, err)
		return []model.MovieSummary{}
	}

	movies := g.fromTMDB(ctx, results)
	g.storeList(key, movies)
	return movies
}

// Details 电影详情
//
// source 为 omdb 或 ID 以 tt 开头时走 OMDb；OMDb 未配置时 tt ID 通过 TMDB find 接口转换。
// 上游 404 或 ID 非法返回 ErrMovieNotFound，其他失败返回包装后的 ErrUpstream。
func (g *MovieGateway) Details(ctx context.Context, id, source string) (*model.MovieDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrMovieNotFound
	}

	useOMDb := source == model.SourceOMDb || isIMDbID(id)
	if useOMDb && !g.omdb.Enabled() && !isIMDbID(id) {
		return nil, ErrMovieNotFound
	}
	if useOMDb && g.omdb.Enabled() {
		source = model.SourceOMDb
	} else {
		source = model.SourceTMDB
	}

	key := source + ":" + id
	if g.details != nil {
		if detail, ok := g.details.Get(key); ok {
			return detail, nil
		}
	}

	val, err, _ := g.detailGroup.Do(key, func() (interface{}, error) {
		// 同一 key 的请求共享结果，不受首个调用方断开影响，耗时由 HTTP 客户端超时约束
		flightCtx := context.WithoutCancel(ctx)
		if source == model.SourceOMDb {
			return g.omdbDetails(flightCtx, id)
		}
		return g.tmdbDetails(flightCtx, id)
	})
	if err != nil {
		return nil, err
	}

	detail := val.(*model.MovieDetail)
	if g.details != nil {
		g.details.Set(key, detail)
	}
	return detail, nil
}

func (g *MovieGateway) tmdbDetails(ctx context.Context, id string) (*model.MovieDetail, error) {
	var tmdbID int
	if isIMDbID(id) {
		found, err := g.tmdb.FindByIMDbID(ctx, id)
		if err != nil {
			return nil, upstreamError(err)
		}
		if found == 0 {
			return nil, ErrMovieNotFound
		}
		tmdbID = found
	} else {
		n, err := strconv.Atoi(id)
		if err != nil || n <= 0 {
			return nil, ErrMovieNotFound
		}
		tmdbID = n
	}

	details, err := g.tmdb.Details(ctx, tmdbID)
	if err != nil {
		return nil, upstreamError(err)
	}
	return g.detailFromTMDB(details), nil
}

func (g *MovieGateway) omdbDetails(ctx context.Context, id string) (*model.MovieDetail, error) {
	details, err := g.omdb.Details(ctx, id)
	if err != nil {
		return nil, upstreamError(err)
	}
	return detailFromOMDb(details), nil
}

// Genres 类型列表，首次成功后常驻缓存；失败时返回兜底列表且不缓存
func (g *MovieGateway) Genres(ctx context.Context) []model.Genre {
	if cached, ok := g.genres.Get(genreCacheKey); ok {
		return cached.([]model.Genre)
	}

	val, err, _ := g.genreGroup.Do(genreCacheKey, func() (interface{}, error) {
		genres, err := g.tmdb.Genres(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		g.genres.Set(genreCacheKey, genres, cache.NoExpiration)
		return genres, nil
	})
	if err != nil {
		log.Printf("[Gateway] 获取类型列表失败，使用兜底列表: %v", err)
		return FallbackGenres()
	}
	return val.([]model.Genre)
}

func (g *MovieGateway) genreNames(ctx context.Context) map[int]string {
	genres := g.Genres(ctx)
	names := make(map[int]string, len(genres))
	for _, genre := range genres {
		names[genre.ID] = genre.Name
	}
	return names
}

func (g *MovieGateway) cachedList(key string) ([]model.MovieSummary, bool) {
	if g.lists == nil {
		return nil, false
	}
	return g.lists.Get(key)
}

func (g *MovieGateway) storeList(key string, movies []model.MovieSummary) {
	if g.lists == nil || len(movies) == 0 {
		return
	}
	g.lists.Set(key, movies)
}

func (g *MovieGateway) fromTMDB(ctx context.Context, results []tmdbMovie) []model.MovieSummary {
	movies := make([]model.MovieSummary, 0, len(results))
	if len(results) == 0 {
		return movies
	}

	names := g.genreNames(ctx)
	for _, m := range results {
		genreIDs := m.GenreIDs
		if genreIDs == nil {
			genreIDs = []int{}
		}
		genres := make([]string, 0, len(genreIDs))
		for _, id := range genreIDs {
			if name, ok := names[id]; ok {
				genres = append(genres, name)
			}
		}

		movies = append(movies, model.MovieSummary{
			ID:           model.MovieID(strconv.Itoa(m.ID)),
			Title:        m.Title,
			Overview:     m.Overview,
			PosterPath:   g.tmdb.ImageURL(posterSize, m.PosterPath),
			BackdropPath: g.tmdb.ImageURL(backdropSize, m.BackdropPath),
			ReleaseDate:  m.ReleaseDate,
			VoteAverage:  m.VoteAverage,
			GenreIDs:     genreIDs,
			Genres:       genres,
			Source:       model.SourceTMDB,
		})
	}
	return movies
}

func (g *MovieGateway) detailFromTMDB(d *tmdbDetails) *model.MovieDetail {
	genres := d.Genres
	if genres == nil {
		genres = []model.Genre{}
	}

	cast := make([]model.CastMember, 0, maxCast)
	for _, c := range d.Credits.Cast {
		if len(cast) == maxCast {
			break
		}
		cast = append(cast, model.CastMember{
			ID:          c.ID,
			Name:        c.Name,
			Character:   c.Character,
			ProfilePath: g.tmdb.ImageURL(profileSize, c.ProfilePath),
		})
	}

	directors := []string{}
	for _, c := range d.Credits.Crew {
		if c.Job == "Director" {
			directors = append(directors, c.Name)
		}
	}

	return &model.MovieDetail{
		ID:            model.MovieID(strconv.Itoa(d.ID)),
		IMDbID:        d.IMDbID,
		Title:         d.Title,
		OriginalTitle: d.OriginalTitle,
		Tagline:       d.Tagline,
		Overview:      d.Overview,
		PosterPath:    g.tmdb.ImageURL(posterSize, d.PosterPath),
		BackdropPath:  g.tmdb.ImageURL(backdropSize, d.BackdropPath),
		ReleaseDate:   d.ReleaseDate,
		Runtime:       d.Runtime,
		VoteAverage:   d.VoteAverage,
		VoteCount:     d.VoteCount,
		Genres:        genres,
		Cast:          cast,
		Directors:     directors,
		Trailer:       pickTrailer(d.Videos.Results),
		Source:        model.SourceTMDB,
	}
}

// pickTrailer 取第一个类型为 Trailer 的视频
func pickTrailer(videos []tmdbVideo) *model.Trailer {
	for _, v := range videos {
		if v.Type != "Trailer" {
			continue
		}
		t := &model.Trailer{Key: v.Key, Name: v.Name, Site: v.Site}
		switch strings.ToLower(v.Site) {
		case "youtube":
			t.URL = "https://www.youtube.com/watch?v=" + v.Key
		case "vimeo":
			t.URL = "https://vimeo.com/" + v.Key
		}
		return t
	}
	return nil
}

func fromOMDbSearch(items []omdbSearchItem) []model.MovieSummary {
	movies := make([]model.MovieSummary, 0, len(items))
	for _, item := range items {
		movies = append(movies, model.MovieSummary{
			ID:          model.MovieID(item.IMDbID),
			Title:       item.Title,
			PosterPath:  omdbImage(item.Poster),
			ReleaseDate: omdbValue(item.Year),
			GenreIDs:    []int{},
			Genres:      []string{},
			Source:      model.SourceOMDb,
		})
	}
	return movies
}

func detailFromOMDb(d *omdbDetails) *model.MovieDetail {
	genres := []model.Genre{}
	for _, name := range omdbList(d.Genre) {
		genres = append(genres, model.Genre{Name: name})
	}

	cast := []model.CastMember{}
	for _, name := range omdbList(d.Actors) {
		if len(cast) == maxCast {
			break
		}
		cast = append(cast, model.CastMember{Name: name})
	}

	rating, _ := strconv.ParseFloat(omdbValue(d.IMDbRating), 64)
	votes, _ := strconv.Atoi(strings.ReplaceAll(omdbValue(d.IMDbVotes), ",", ""))

	return &model.MovieDetail{
		ID:            model.MovieID(d.IMDbID),
		IMDbID:        d.IMDbID,
		Title:         d.Title,
		OriginalTitle: d.Title,
		Overview:      omdbValue(d.Plot),
		PosterPath:    omdbImage(d.Poster),
		ReleaseDate:   omdbReleaseDate(d.Released, d.Year),
		Runtime:       omdbRuntime(d.Runtime),
		VoteAverage:   rating,
		VoteCount:     votes,
		Genres:        genres,
		Cast:          cast,
		Directors:     omdbList(d.Director),
		Source:        model.SourceOMDb,
	}
}

// omdbReleaseDate "16 Jul 2010" 转为 "2010-07-16"，无法解析时退回年份
func omdbReleaseDate(released, year string) string {
	if t, err := time.Parse("02 Jan 2006", omdbValue(released)); err == nil {
		return t.Format("2006-01-02")
	}
	return omdbValue(year)
}

// omdbRuntime "148 min" 转为分钟数
func omdbRuntime(v string) int {
	fields := strings.Fields(omdbValue(v))
	if len(fields) == 0 {
		return 0
	}
	n, _ := strconv.Atoi(fields[0])
	return n
}

func isIMDbID(id string) bool {
	return strings.HasPrefix(id, "tt") && len(id) > 2
}

func upstreamError(err error) error {
	if errors.Is(err, ErrMovieNotFound) || isNotFound(err) {
		return ErrMovieNotFound
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
