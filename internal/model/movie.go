package model

// Genre 电影类型
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MovieSummary 列表接口返回的统一电影结构
type MovieSummary struct {
	ID           MovieID  `json:"id"`
	Title        string   `json:"title"`
	Overview     string   `json:"overview"`
	PosterPath   *string  `json:"poster_path"`
	BackdropPath *string  `json:"backdrop_path"`
	ReleaseDate  string   `json:"release_date"`
	VoteAverage  float64  `json:"vote_average"`
	GenreIDs     []int    `json:"genre_ids"`
	Genres       []string `json:"genres"`
	Source       string   `json:"source"`
}

// MovieDetail 电影详情
type MovieDetail struct {
	ID            MovieID      `json:"id"`
	IMDbID        string       `json:"imdb_id"`
	Title         string       `json:"title"`
	OriginalTitle string       `json:"original_title"`
	Tagline       string       `json:"tagline"`
	Overview      string       `json:"overview"`
	PosterPath    *string      `json:"poster_path"`
	BackdropPath  *string      `json:"backdrop_path"`
	ReleaseDate   string       `json:"release_date"`
	Runtime       int          `json:"runtime"`
	VoteAverage   float64      `json:"vote_average"`
	VoteCount     int          `json:"vote_count"`
	Genres        []Genre      `json:"genres"`
	Cast          []CastMember `json:"cast"`
	Directors     []string     `json:"directors"`
	Trailer       *Trailer     `json:"trailer"`
	Source        string       `json:"source"`
}

// CastMember 演员
type CastMember struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profile_path"`
}

// Trailer 预告片
type Trailer struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	URL  string `json:"url"`
}

// 数据来源
const (
	SourceTMDB = "tmdb"
	SourceOMDb = "omdb"
)
