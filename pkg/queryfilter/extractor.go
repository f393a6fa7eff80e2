// Package queryfilter 从自由文本查询中提取结构化属性过滤条件。
// 对词表中每个候选标签计算 token_set_ratio 模糊相似度，
// 得分达到阈值即采用，每个类目最多产出一个标签。
package queryfilter

import (
	"strings"
	"unicode"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/PradeepdubeyAI/fashion-semantic-search/pkg/taxonomy"
)

// DefaultThreshold 模糊匹配的默认接受阈值（0-100）
const DefaultThreshold = 75

// Extractor 属性过滤条件提取器
type Extractor struct {
	tax       *taxonomy.Taxonomy
	threshold int
}

// New 创建提取器，threshold 非正时使用 DefaultThreshold
func New(tax *taxonomy.Taxonomy, threshold int) *Extractor {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Extractor{tax: tax, threshold: threshold}
}

// Extract 解析查询并返回类目到标签的映射。
// 同一类目内取首个达到阈值的标签（按词表顺序），而不是最高分标签；
// 没有任何类目达到阈值时返回空映射，这是正常结果而非错误。
func (e *Extractor) Extract(query string) map[string]string {
	haystack := normalize(query)

	filters := make(map[string]string)
	for _, category := range e.tax.Categories() {
		for _, label := range e.tax.Labels(category) {
			score := fuzzy.TokenSetRatio(haystack, normalize(label))
			if score >= e.threshold {
				filters[category] = label
				break
			}
		}
	}
	return filters
}

// normalize 清洗待比较文本：小写化，非字母数字字符一律视为空白并折叠。
// 查询侧与标签侧做同样的清洗，连字符等标点不影响 token 切分
// （"floor-length" 与 "floor length" 清洗后等价）。
func normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}
