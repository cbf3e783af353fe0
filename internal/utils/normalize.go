package utils

import (
	"html"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText 标准化标题或搜索词
// 依次执行：修复常见编码乱码、反转义 HTML 实体、NFC 规范化、去除首尾空白、转为小写
func NormalizeText(s string) string {
	s = RepairMojibake(s)
	s = html.UnescapeString(s)
	s = norm.NFC.String(s)
	s = strings.TrimSpace(s)
	return strings.ToLower(s)
}

// cp1252 Windows-1252 中 0x80~0x9F 区段的字符表
// 修复乱码时需要把这些字符还原成原始字节
var cp1252 = map[rune]byte{
	'€': 0x80, '‚': 0x82, 'ƒ': 0x83, '„': 0x84, '…': 0x85,
	'†': 0x86, '‡': 0x87, 'ˆ': 0x88, '‰': 0x89, 'Š': 0x8A,
	'‹': 0x8B, 'Œ': 0x8C, 'Ž': 0x8E, '‘': 0x91, '’': 0x92,
	'“': 0x93, '”': 0x94, '•': 0x95, '–': 0x96, '—': 0x97,
	'˜': 0x98, '™': 0x99, 'š': 0x9A, '›': 0x9B, 'œ': 0x9C,
	'ž': 0x9E, 'Ÿ': 0x9F,
}

// RepairMojibake 修复 UTF-8 文本被按 Latin-1/Windows-1252 错误解码产生的乱码
// 如 "AmÃ©lie" 还原为 "Amélie"；无法确认是乱码时原样返回
func RepairMojibake(s string) string {
	// 最多修复三轮，处理被双重错误解码的文本
	for i := 0; i < 3; i++ {
		fixed, ok := repairOnce(s)
		if !ok {
			return s
		}
		s = fixed
	}
	return s
}

func repairOnce(s string) (string, bool) {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		if r < 0x100 {
			b = append(b, byte(r))
			continue
		}
		c, ok := cp1252[r]
		if !ok {
			return s, false
		}
		b = append(b, c)
	}
	// 还原后必须是合法 UTF-8 且确实发生了多字节折叠，否则认定原文不是乱码
	if !utf8.Valid(b) || utf8.RuneCount(b) >= utf8.RuneCountInString(s) {
		return s, false
	}
	return string(b), true
}

// TokenSetRatio 计算两段文本的 token 集合相似度（0~100）
// 实现与 rapidfuzz 的 token_set_ratio 一致：分词去重排序后，
// 对交集串与"交集+差集"串的三种组合取最大的 Indel 相似度
func TokenSetRatio(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	sect, diffAB, diffBA := splitTokens(ta, tb)
	// 一方的 token 是另一方的子集时直接满分
	if len(sect) > 0 && (len(diffAB) == 0 || len(diffBA) == 0) {
		return 100
	}

	sectStr := strings.Join(sect, " ")
	abStr := joinPair(sectStr, strings.Join(diffAB, " "))
	baStr := joinPair(sectStr, strings.Join(diffBA, " "))

	r1 := indelRatio(sectStr, abStr)
	r2 := indelRatio(sectStr, baStr)
	r3 := indelRatio(abStr, baStr)
	return math.Max(r1, math.Max(r2, r3))
}

// tokenSet 按空白分词，去重并排序
func tokenSet(s string) []string {
	fields := strings.Fields(s)
	sort.Strings(fields)
	var out []string
	for _, f := range fields {
		if len(out) == 0 || out[len(out)-1] != f {
			out = append(out, f)
		}
	}
	return out
}

// splitTokens 归并两个已排序去重的 token 列表，拆出交集与双向差集
func splitTokens(a, b []string) (sect, diffA, diffB []string) {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			sect = append(sect, a[i])
			i++
			j++
		case a[i] < b[j]:
			diffA = append(diffA, a[i])
			i++
		default:
			diffB = append(diffB, b[j])
			j++
		}
	}
	diffA = append(diffA, a[i:]...)
	diffB = append(diffB, b[j:]...)
	return
}

func joinPair(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + " " + b
}

// indelRatio 基于最长公共子序列的归一化相似度（0~100），按 Unicode 字符计算
func indelRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	return 200 * float64(lcsLen(ra, rb)) / float64(total)
}

// lcsLen 最长公共子序列长度，滚动数组实现
func lcsLen(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
