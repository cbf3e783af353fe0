package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText_TrimAndLower(t *testing.T) {
	assert.Equal(t, "the matrix", NormalizeText("  The Matrix \t"))
}

func TestNormalizeText_HTMLEntities(t *testing.T) {
	assert.Equal(t, "fast & furious", NormalizeText("Fast &amp; Furious"))
	assert.Equal(t, "l'amour", NormalizeText("L&#39;Amour"))
}

func TestNormalizeText_NFCComposition(t *testing.T) {
	// "é" 的分解形式（e + 组合重音符）应规范化为合成形式
	decomposed := "Amélie"
	composed := "amélie"
	assert.Equal(t, composed, NormalizeText(decomposed))
}

func TestNormalizeText_Mojibake(t *testing.T) {
	assert.Equal(t, "amélie", NormalizeText("AmÃ©lie"))
	assert.Equal(t, "schindler’s list", NormalizeText("Schindlerâ€™s List"))
}

func TestRepairMojibake_LegitAccentsUntouched(t *testing.T) {
	// 合法的带重音文本按 Latin-1 还原后不是合法 UTF-8，必须原样保留
	assert.Equal(t, "Château", RepairMojibake("Château"))
	assert.Equal(t, "Amélie", RepairMojibake("Amélie"))
	assert.Equal(t, "plain ascii", RepairMojibake("plain ascii"))
}

func TestRepairMojibake_DoubleEncoded(t *testing.T) {
	// "é" 被两次错误解码为 "ÃƒÂ©"，需要两轮修复
	assert.Equal(t, "é", RepairMojibake("ÃƒÂ©"))
}

func TestRepairMojibake_CJK(t *testing.T) {
	// "中" 的 UTF-8 字节被按 Latin-1 解码
	assert.Equal(t, "中", RepairMojibake("ä¸­"))
}

func TestTokenSetRatio_Identical(t *testing.T) {
	assert.Equal(t, 100.0, TokenSetRatio("dark knight", "dark knight"))
}

func TestTokenSetRatio_TokenOrderIgnored(t *testing.T) {
	assert.Equal(t, 100.0, TokenSetRatio("knight dark", "dark knight"))
}

func TestTokenSetRatio_SubsetIsFullScore(t *testing.T) {
	assert.Equal(t, 100.0, TokenSetRatio("batman", "batman returns"))
	assert.Equal(t, 100.0, TokenSetRatio("the lord of the rings", "lord of the rings the fellowship"))
}

func TestTokenSetRatio_Symmetric(t *testing.T) {
	a := "the dark knight"
	b := "dark knight rises"
	assert.InDelta(t, TokenSetRatio(a, b), TokenSetRatio(b, a), 1e-9)
}

func TestTokenSetRatio_PartialOverlap(t *testing.T) {
	score := TokenSetRatio("the dark knight", "dark knight rises")
	assert.Greater(t, score, 70.0)
	assert.Less(t, score, 100.0)
}

func TestTokenSetRatio_Disjoint(t *testing.T) {
	score := TokenSetRatio("inception", "titanic")
	assert.Less(t, score, 40.0)
}

func TestTokenSetRatio_EmptyInput(t *testing.T) {
	assert.Equal(t, 0.0, TokenSetRatio("", "inception"))
	assert.Equal(t, 0.0, TokenSetRatio("inception", ""))
	assert.Equal(t, 0.0, TokenSetRatio("", ""))
}

func TestIndelRatio_RuneAware(t *testing.T) {
	// 多字节字符按字符而不是字节参与计算
	assert.InDelta(t, 100.0, indelRatio("héros", "héros"), 1e-9)
	assert.InDelta(t, 0.0, indelRatio("", "abc"), 1e-9)
}
