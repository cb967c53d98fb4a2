package model

import "strings"

// SplitKeywords はカンマ区切りのキーワードを分割します。
// 前後の空白を取り除き、空の要素は捨てます。
func SplitKeywords(raw string) []string {
	keywords := []string{}
	for _, part := range strings.Split(raw, ",") {
		if kw := strings.TrimSpace(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

// JoinKeywords はフォームの初期値用にキーワードを連結します。
func JoinKeywords(keywords []string) string {
	return strings.Join(keywords, ", ")
}
