// Package taxonomy 定义属性的封闭词表。
// 词表在进程启动时从 JSON 文件加载一次，运行期间只读；
// 入库的属性值与查询解析出的过滤值都必须来自该词表（或 Unknown 哨兵值）。
package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
)

// 四个属性类目，同时也是 images 表的列名
const (
	CategorySilhouette = "silhouette"
	CategoryLength     = "length"
	CategorySleeveType = "sleeve_type"
	CategoryColor      = "color"
)

// Unknown 分类失败时的哨兵值
const Unknown = "Unknown"

// Taxonomy 类目到候选标签列表的映射，标签顺序即匹配时的迭代顺序
type Taxonomy struct {
	Silhouette []string `json:"silhouette"`
	Length     []string `json:"length"`
	SleeveType []string `json:"sleeve_type"`
	Color      []string `json:"color"`
}

// Load 从 JSON 文件加载词表。
// 文件缺失、JSON 非法或任一类目为空都视为致命配置错误。
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file: %w", err)
	}

	var t Taxonomy
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy file: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Taxonomy) validate() error {
	for _, category := range t.Categories() {
		if len(t.Labels(category)) == 0 {
			return fmt.Errorf("taxonomy category %q is missing or empty", category)
		}
	}
	return nil
}

// Categories 返回固定顺序的类目列表
func (t *Taxonomy) Categories() []string {
	return []string{CategorySilhouette, CategoryLength, CategorySleeveType, CategoryColor}
}

// Labels 返回指定类目的候选标签，顺序与文件中一致
func (t *Taxonomy) Labels(category string) []string {
	switch category {
	case CategorySilhouette:
		return t.Silhouette
	case CategoryLength:
		return t.Length
	case CategorySleeveType:
		return t.SleeveType
	case CategoryColor:
		return t.Color
	default:
		return nil
	}
}

// Contains 判断标签是否属于指定类目的词表
func (t *Taxonomy) Contains(category, label string) bool {
	for _, l := range t.Labels(category) {
		if l == label {
			return true
		}
	}
	return false
}
