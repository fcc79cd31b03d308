package parser

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	bulletPrefixRe = regexp.MustCompile(`^(?:[•●▪◦‣·∙■□➢►✓✔*]|[-–—]\s|o\s)\s*`)
	spaceRunRe     = regexp.MustCompile(`\s+`)
)

// firstRunes 返回文本的前n个字符（按rune计算）
func firstRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}

// firstLines 返回前n行（不去除空白）
func firstLines(text string, n int) []string {
	lines := strings.SplitN(text, "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
	}
	return lines
}

// nonEmptyLines 返回去除首尾空白后的非空行
func nonEmptyLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// isBullet 判断行是否以项目符号开头
func isBullet(line string) bool {
	return bulletPrefixRe.MatchString(line)
}

// stripBullet 去除行首的项目符号
func stripBullet(line string) string {
	return strings.TrimSpace(bulletPrefixRe.ReplaceAllString(strings.TrimSpace(line), ""))
}

// collapseSpaces 合并连续空白
func collapseSpaces(s string) string {
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
}

// trimSeparators 去除首尾的分隔符和空白
func trimSeparators(s string) string {
	return strings.Trim(collapseSpaces(s), " \t,;:|-–—()")
}

// containsDigit 判断字符串是否包含数字
func containsDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// isAllUpper 至少包含一个字母且所有字母均为大写
func isAllUpper(s string) bool {
	cased := false
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			return false
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			cased = true
		}
	}
	return cased
}

// startsUpper 判断单词首字符是否为大写字母
func startsUpper(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}
