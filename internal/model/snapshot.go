package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"gorm.io/datatypes"
)

// Snapshot 用户操作时保存的电影展示字段快照，存储层不解析其结构
type Snapshot = datatypes.JSON

// MovieID 电影 ID，兼容 JSON 数字和字符串（TMDB 为数字，OMDb 为 tt 开头的字符串）
type MovieID string

// UnmarshalJSON 接受 42、"42"、"tt0133093"
func (id *MovieID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = MovieID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = MovieID(n.String())
	return nil
}

// MarshalJSON 纯数字 ID 输出为数字，其余输出为字符串
func (id MovieID) MarshalJSON() ([]byte, error) {
	if id.IsNumeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// IsNumeric 是否为规范的十进制数字 ID，"007" 这类带前导零的不算
func (id MovieID) IsNumeric() bool {
	n, err := strconv.ParseUint(string(id), 10, 64)
	return err == nil && strconv.FormatUint(n, 10) == string(id)
}

func (id MovieID) String() string {
	return string(id)
}

// SnapshotMovieID 从快照中读取 id 字段，没有时返回空
func SnapshotMovieID(s Snapshot) MovieID {
	var holder struct {
		ID MovieID `json:"id"`
	}
	if err := json.Unmarshal(s, &holder); err != nil {
		return ""
	}
	return holder.ID
}

// IsEmptySnapshot 快照为空或为 JSON null
func IsEmptySnapshot(s Snapshot) bool {
	trimmed := bytes.TrimSpace(s)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
